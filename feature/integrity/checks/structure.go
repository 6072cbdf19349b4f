package checks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"itunes2storage/core/storage"

	"go.uber.org/zap"
)

// CheckStructure returns the directories among dirs that do not exist.
// A path that exists but is not a directory is an error.
func CheckStructure(ctx context.Context, client storage.Client, dirs ...string) ([]string, error) {
	var missing []string

	for _, dir := range dirs {
		info, err := client.Stat(ctx, dir)
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, dir)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s exists but is not a directory", dir)
		}
	}

	return missing, nil
}

// FixStructure creates the missing directories.
func FixStructure(ctx context.Context, client storage.Client, logger *zap.Logger, missing []string) error {
	for _, dir := range missing {
		if err := client.MakeDir(ctx, dir); err != nil {
			logger.Error("Failed to create directory", zap.String("dir", dir), zap.Error(err))
			return err
		}
		logger.Info("Created missing directory", zap.String("dir", dir))
	}
	return nil
}
