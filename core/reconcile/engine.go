package reconcile

import (
	"sort"
)

// ReconcileAll performs a full reconciliation across all entities.
// It classifies the union of keys from both sides and returns a result for each key
// indicating presence and mismatches, sorted by key.
func ReconcileAll(spec *Spec, source, state map[string]Item) []ReconcileResult {
	return reconcileDiff(spec, Classify(source, state), source, state)
}

// reconcileDiff builds one result per classified key.
func reconcileDiff(spec *Spec, diff Diff, source, state map[string]Item) []ReconcileResult {
	results := make([]ReconcileResult, 0, len(diff.Added)+len(diff.Retained)+len(diff.Removed))
	for _, keys := range [][]string{diff.Added, diff.Retained, diff.Removed} {
		for _, key := range keys {
			results = append(results, buildResult(key, source, state, spec.Adapter))
		}
	}

	// Sort results by key for deterministic output
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})

	return results
}

// Classify partitions the union of keys into added, retained and removed.
func Classify(source, state map[string]Item) Diff {
	diff := Diff{
		Added:    []string{},
		Retained: []string{},
		Removed:  []string{},
	}

	for key := range source {
		if _, ok := state[key]; ok {
			diff.Retained = append(diff.Retained, key)
		} else {
			diff.Added = append(diff.Added, key)
		}
	}
	for key := range state {
		if _, ok := source[key]; !ok {
			diff.Removed = append(diff.Removed, key)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Retained)
	sort.Strings(diff.Removed)

	return diff
}

// buildResult creates a ReconcileResult for a single key.
func buildResult(key string, source, state map[string]Item, adapter Adapter) ReconcileResult {
	sourceItem, sourcePresent := source[key]
	stateItem, statePresent := state[key]

	result := ReconcileResult{
		ID:            key,
		SourcePresent: sourcePresent,
		StatePresent:  statePresent,
		Mismatch:      []string{},
	}

	var sourcePtr, statePtr Item
	if sourcePresent {
		sourcePtr = sourceItem
	}
	if statePresent {
		statePtr = stateItem
	}
	result.Name = adapter.ResolveName(sourcePtr, statePtr)
	result.Metadata = adapter.GetMetadata(sourcePtr, statePtr)

	// Compare fields if both present
	if sourcePresent && statePresent {
		if mismatch := adapter.CompareFields(sourceItem, stateItem); len(mismatch) > 0 {
			result.Mismatch = mismatch
		}
	}

	return result
}
