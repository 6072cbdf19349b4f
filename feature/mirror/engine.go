package mirror

import (
	"context"
	"path/filepath"

	"itunes2storage/core/reconcile"
	"itunes2storage/core/storage"
	"itunes2storage/feature/library"

	"go.uber.org/zap"
)

// Options configures an Engine.
type Options struct {
	// Root is the mirror root directory.
	Root string
	// StateFile is the location of the persisted state.
	StateFile string
	// Workers bounds concurrent copies and deletions. One runs them sequentially.
	Workers int
}

// CopyOp is a scheduled copy.
type CopyOp struct {
	PID  string `json:"pid"`
	Src  string `json:"src"`
	Dest string `json:"dest"`
}

// Counts summarizes a reconciliation.
type Counts struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// Failure describes one copy or delete that did not complete.
type Failure struct {
	Op   reconcile.ActionType `json:"op"`
	PID  string               `json:"pid"`
	Src  string               `json:"src,omitempty"`
	Dest string               `json:"dest"`
	Err  error                `json:"-"`
}

// Result is the outcome of planning or running a reconciliation.
type Result struct {
	// Plan is the underlying generic plan.
	Plan *reconcile.ReconcilePlan `json:"-"`
	// ToCopy lists scheduled copies (adds and updates), destinations absolute.
	ToCopy []CopyOp `json:"to_copy"`
	// ToDelete lists scheduled deletions, absolute.
	ToDelete []string `json:"to_delete"`
	Counts   Counts   `json:"counts"`
	// Failed lists copies and deletions that failed. Empty for a plan.
	Failed []Failure `json:"failed"`
	// State is the new mirror state. For a plan it is the state a fully successful run would persist.
	State State `json:"-"`
}

// CopyFailures counts failed copies and updates.
func (r *Result) CopyFailures() int {
	n := 0
	for _, f := range r.Failed {
		if f.Op != reconcile.ActionDelete {
			n++
		}
	}
	return n
}

// DeleteFailures counts failed deletions.
func (r *Result) DeleteFailures() int {
	return len(r.Failed) - r.CopyFailures()
}

// Engine reconciles the mirror directory with an extracted track set.
type Engine struct {
	client  storage.Client
	logger  *zap.Logger
	opts    Options
	adapter *trackAdapter
}

// NewEngine creates an Engine.
func NewEngine(client storage.Client, logger *zap.Logger, opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{
		client: client,
		logger: logger,
		opts:   opts,
		adapter: &trackAdapter{
			client: client,
			root:   opts.Root,
			logger: logger,
		},
	}
}

func (e *Engine) spec() *reconcile.Spec {
	return &reconcile.Spec{Adapter: e.adapter, Workers: e.opts.Workers}
}

// Plan classifies tracks against prior without touching the filesystem.
func (e *Engine) Plan(tracks library.TrackSet, prior State) *Result {
	plan := reconcile.ReconcileWithPlan(e.spec(), sourceItems(tracks), stateItems(prior))
	return e.newResult(plan, tracks, prior, nil)
}

// Reconcile plans and applies copies and deletions, then computes the new state.
// Individual failures are logged and reported in Result.Failed; they never abort the run.
func (e *Engine) Reconcile(ctx context.Context, tracks library.TrackSet, prior State) (*Result, error) {
	spec := e.spec()
	plan := reconcile.ReconcileWithPlan(spec, sourceItems(tracks), stateItems(prior))

	report, err := reconcile.ApplyPlan(ctx, spec, plan, reconcile.ReconcileOptions{})
	if err != nil {
		return nil, err
	}

	for _, action := range report.Succeeded {
		e.logger.Debug("Mirror action completed",
			zap.String("action", string(action.Type)),
			zap.String("pid", action.Key),
		)
	}

	result := e.newResult(plan, tracks, prior, report)
	for _, failure := range result.Failed {
		e.logger.Error("Mirror action failed",
			zap.String("action", string(failure.Op)),
			zap.String("pid", failure.PID),
			zap.String("src", failure.Src),
			zap.String("dest", failure.Dest),
			zap.Error(failure.Err),
		)
	}

	return result, nil
}

// Sync loads the persisted state, reconciles, and persists the new state.
// The only error returned is a failure to persist, which wraps ErrStatePersistFailed.
func (e *Engine) Sync(ctx context.Context, tracks library.TrackSet) (*Result, error) {
	prior, err := LoadState(ctx, e.client, e.opts.StateFile)
	if err != nil {
		e.logger.Warn("Mirror state unreadable, starting from an empty state",
			zap.String("file", e.opts.StateFile),
			zap.Error(err),
		)
	}

	result, err := e.Reconcile(ctx, tracks, prior)
	if err != nil {
		return nil, err
	}

	if err := SaveState(ctx, e.client, e.opts.StateFile, result.State); err != nil {
		e.logger.Error("Failed to persist mirror state", zap.String("file", e.opts.StateFile), zap.Error(err))
		return result, err
	}

	return result, nil
}

// newResult assembles a Result. With a nil report the new state assumes every action succeeds.
func (e *Engine) newResult(plan *reconcile.ReconcilePlan, tracks library.TrackSet, prior State, report *reconcile.ApplyReport) *Result {
	result := &Result{
		Plan:     plan,
		ToCopy:   []CopyOp{},
		ToDelete: []string{},
		Failed:   []Failure{},
		Counts: Counts{
			Added:     plan.Summary.Added,
			Updated:   plan.Summary.Updated,
			Removed:   plan.Summary.Removed,
			Unchanged: plan.Summary.Unchanged,
		},
	}

	for _, action := range plan.Actions {
		switch action.Type {
		case reconcile.ActionCopy, reconcile.ActionUpdate:
			track := action.Source.(library.Track)
			result.ToCopy = append(result.ToCopy, CopyOp{
				PID:  track.PID,
				Src:  track.Source,
				Dest: e.absolute(track.Destination),
			})
		case reconcile.ActionDelete:
			result.ToDelete = append(result.ToDelete, e.absolute(action.State.(Entry).Path))
		}
	}

	if report != nil {
		for _, outcome := range report.Failed {
			failure := Failure{Op: outcome.Action.Type, PID: outcome.Action.Key, Err: outcome.Err}
			if track, ok := outcome.Action.Source.(library.Track); ok {
				failure.Src = track.Source
				failure.Dest = e.absolute(track.Destination)
			} else if entry, ok := outcome.Action.State.(Entry); ok {
				failure.Dest = e.absolute(entry.Path)
			}
			result.Failed = append(result.Failed, failure)
		}
	}

	result.State = nextState(tracks, prior, report)
	return result
}

func (e *Engine) absolute(rel string) string {
	if path, err := resolvePath(e.opts.Root, rel); err == nil {
		return path
	}
	return filepath.Join(e.opts.Root, rel)
}

// nextState is the state to persist after applying report. A failed add is left out so the
// next run copies it again; a failed update or delete keeps the prior entry for the same reason.
func nextState(tracks library.TrackSet, prior State, report *reconcile.ApplyReport) State {
	failedAdds := report.FailedKeys(reconcile.ActionCopy)
	failedUpdates := report.FailedKeys(reconcile.ActionUpdate)
	failedDeletes := report.FailedKeys(reconcile.ActionDelete)

	state := make(State, len(tracks)+len(failedDeletes))
	for pid, track := range tracks {
		if _, failed := failedAdds[pid]; failed {
			continue
		}
		if _, failed := failedUpdates[pid]; failed {
			state[pid] = prior[pid]
			continue
		}
		state[pid] = EntryFromTrack(track)
	}
	for pid := range failedDeletes {
		state[pid] = prior[pid]
	}

	return state
}

func sourceItems(tracks library.TrackSet) map[string]reconcile.Item {
	items := make(map[string]reconcile.Item, len(tracks))
	for pid, track := range tracks {
		items[pid] = track
	}
	return items
}

func stateItems(state State) map[string]reconcile.Item {
	items := make(map[string]reconcile.Item, len(state))
	for pid, entry := range state {
		items[pid] = entry
	}
	return items
}
