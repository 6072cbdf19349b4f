package reconcile

// ReconcileResult represents the reconciliation output for a single entity.
// It contains presence flags for each side and any detected mismatches.
type ReconcileResult struct {
	// ID is the unique identifier for the entity.
	ID string `json:"id"`

	// Name is the display name of the entity.
	Name string `json:"name"`

	// SourcePresent indicates whether the entity exists in the fresh source snapshot.
	SourcePresent bool `json:"source_present"`

	// StatePresent indicates whether the entity exists in the previously persisted state.
	StatePresent bool `json:"state_present"`

	// Mismatch contains descriptions of field mismatches between source and state.
	// Each string describes a specific mismatch, e.g., "modified: source=... state=...".
	Mismatch []string `json:"mismatch"`

	// Metadata contains model-specific arbitrary data (e.g., destination path).
	Metadata map[string]string `json:"metadata"`
}

// Spec defines the configuration for a reconciliation operation.
type Spec struct {
	// Adapter provides model-specific reconciliation logic.
	Adapter Adapter

	// Workers bounds how many actions of one phase run at the same time.
	// Zero or one executes actions sequentially.
	Workers int
}

// Item represents a source or state entity with arbitrary fields.
// Adapters define the concrete type.
type Item any

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCopy materializes an entity that only exists in the source.
	ActionCopy ActionType = "copy"
	// ActionUpdate re-materializes an entity whose source differs from the state.
	ActionUpdate ActionType = "update"
	// ActionDelete removes an entity that only exists in the state.
	ActionDelete ActionType = "delete"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the entity identifier.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Source stores the source entity. Populated for copy and update actions.
	Source Item `json:"-"`

	// State stores the prior state entity. Populated for update and delete actions.
	State Item `json:"-"`
}

// ReconcilePlan contains reconciliation results and planned actions.
type ReconcilePlan struct {
	// Diff partitions every key into added, retained and removed.
	Diff Diff `json:"diff"`

	// Results contains per-entity reconciliation data.
	Results []ReconcileResult `json:"results"`

	// Actions contains planned mutation operations, ordered by key within each type.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the total number of unique entities.
	TotalItems int `json:"total_items"`

	// Added counts entities present only in the source.
	Added int `json:"added"`

	// Updated counts entities present on both sides with mismatches.
	Updated int `json:"updated"`

	// Removed counts entities present only in the state.
	Removed int `json:"removed"`

	// Unchanged counts entities present on both sides without mismatches.
	Unchanged int `json:"unchanged"`
}

// ReconcileOptions controls how a plan is applied.
type ReconcileOptions struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool
}

// Diff is the set-based classification of entity keys.
// The three slices are disjoint, sorted, and together cover every key of both sides.
type Diff struct {
	Added    []string `json:"added"`
	Retained []string `json:"retained"`
	Removed  []string `json:"removed"`
}

// Outcome records the result of executing one action.
type Outcome struct {
	Action Action `json:"action"`
	Err    error  `json:"-"`
}

// ApplyReport collects the outcome of every executed action.
type ApplyReport struct {
	// Executed is the number of actions attempted.
	Executed int `json:"executed"`

	// Succeeded lists actions that completed.
	Succeeded []Action `json:"succeeded"`

	// Failed lists actions that returned an error.
	Failed []Outcome `json:"failed"`
}

// FailedKeys returns the keys of failed actions of the given type.
func (r *ApplyReport) FailedKeys(actionType ActionType) map[string]error {
	keys := make(map[string]error)
	if r == nil {
		return keys
	}
	for _, outcome := range r.Failed {
		if outcome.Action.Type == actionType {
			keys[outcome.Action.Key] = outcome.Err
		}
	}
	return keys
}
