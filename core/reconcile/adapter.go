package reconcile

import "context"

// Adapter defines the interface for model-specific reconciliation logic.
// Each adapter implements how to name, describe and compare entities of one model
// (e.g., mirrored tracks).
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "tracks").
	Name() string

	// ResolveName returns the display name for an entity given the available source and/or state items.
	// Either item may be nil if not present on that side.
	ResolveName(source, state Item) string

	// CompareFields compares mapped fields between the source and state items and returns
	// a list of mismatch descriptions. A non-empty result schedules an update.
	// Both items are guaranteed to be non-nil when this is called.
	CompareFields(source, state Item) []string

	// GetMetadata returns model-specific metadata for the entity.
	// This data is included in the ReconcileResult.
	GetMetadata(source, state Item) map[string]string
}

// Mutator is implemented by adapters that can apply planned actions.
type Mutator interface {
	// Copy materializes action.Source. It serves both copy and update actions.
	Copy(ctx context.Context, action Action) error

	// Delete removes what action.State describes.
	Delete(ctx context.Context, action Action) error
}
