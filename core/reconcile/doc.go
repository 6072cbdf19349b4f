// Package reconcile provides a generic system for reconciling a fresh source snapshot
// against the previously persisted state of what was materialized from it.
//
// # Architecture
//
// The reconcile system consists of three main components:
//
// 1. Engine: Core reconciliation logic that builds a union of keys from both sides,
//    detects presence/absence, and identifies field mismatches (Classify, ReconcileAll).
//
// 2. Plan: Turns results into actions. A key only in the source is copied, a key on both
//    sides with mismatches is updated, a key only in the state is deleted.
//
// 3. Apply: Executes a plan through the adapter's Mutator. Copy and update actions run first,
//    then, after all of them finished, delete actions. Each phase runs on a worker pool bounded
//    by Spec.Workers. One failing action never stops the others; every outcome is reported.
//
// # Usage Example
//
//	spec := &reconcile.Spec{Adapter: adapter, Workers: 4}
//	plan := reconcile.ReconcileWithPlan(spec, source, state)
//	report, err := reconcile.ApplyPlan(ctx, spec, plan, reconcile.ReconcileOptions{})
//
// # Creating Adapters
//
// To support a new model, implement the Adapter interface with model-specific logic for naming
// and comparing entities, and Mutator to apply actions. See feature/mirror for the track adapter.
package reconcile
