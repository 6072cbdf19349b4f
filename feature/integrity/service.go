package integrity

import (
	"context"

	"itunes2storage/core/storage"
	"itunes2storage/feature/integrity/checks"
	"itunes2storage/feature/mirror"

	"go.uber.org/zap"
)

// Report is the result of a full mirror verification.
type Report struct {
	// MissingDirs lists the mirror directories that do not exist.
	MissingDirs []string `json:"missing_dirs"`
	// Files compares the state with the mirror root. Nil when the root is missing or the state unreadable.
	Files *checks.FilesReport `json:"files"`
	// StateErr is set when the state could not be read. The files check is skipped since every
	// mirrored track would look untracked; a sync rebuilds the state.
	StateErr error `json:"-"`
}

// Clean reports whether the mirror needs no fix.
func (r *Report) Clean() bool {
	return len(r.MissingDirs) == 0 && r.StateErr == nil && (r.Files == nil || r.Files.Clean())
}

// Service handles integrity checks.
type Service struct {
	client    storage.Client
	root      string
	appPath   string
	stateFile string
	logger    *zap.Logger
}

// NewService creates a new integrity service.
func NewService(client storage.Client, root, appPath, stateFile string, logger *zap.Logger) *Service {
	return &Service{
		client:    client,
		root:      root,
		appPath:   appPath,
		stateFile: stateFile,
		logger:    logger,
	}
}

// CheckStructure returns a list of missing directories.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.root, s.appPath)
}

// FixStructure creates the missing directories.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.logger, missing)
}

// Verify runs every check.
func (s *Service) Verify(ctx context.Context) (*Report, error) {
	missing, err := s.CheckStructure(ctx)
	if err != nil {
		return nil, err
	}
	report := &Report{MissingDirs: missing}

	for _, dir := range missing {
		if dir == s.root {
			return report, nil
		}
	}

	state, err := mirror.LoadState(ctx, s.client, s.stateFile)
	if err != nil {
		report.StateErr = err
		return report, nil
	}

	files, err := checks.CheckFiles(ctx, s.client, s.root, state)
	if err != nil {
		return nil, err
	}
	report.Files = files

	return report, nil
}

// Fix repairs what Verify found: missing directories are created, orphans deleted, and state
// entries whose file is gone dropped from the persisted state.
// With an unreadable state no file is deleted and the state is left for the next sync to rebuild.
func (s *Service) Fix(ctx context.Context, report *Report) error {
	if err := s.FixStructure(ctx, report.MissingDirs); err != nil {
		return err
	}
	if report.StateErr != nil {
		s.logger.Warn("Mirror state unreadable, leaving files untouched; run sync to rebuild it",
			zap.String("file", s.stateFile),
			zap.Error(report.StateErr),
		)
		return nil
	}
	if report.Files == nil {
		return nil
	}

	state, err := mirror.LoadState(ctx, s.client, s.stateFile)
	if err != nil {
		return err
	}

	fixed, err := checks.FixFiles(ctx, s.client, s.logger, report.Files, state)
	if err != nil {
		return err
	}

	if len(report.Files.Missing) == 0 {
		return nil
	}
	return mirror.SaveState(ctx, s.client, s.stateFile, fixed)
}
