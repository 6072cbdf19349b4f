package reconcile

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ReconcileWithPlan performs reconciliation and returns a plan with results and actions.
// It does NOT execute actions; use ApplyPlan for that.
func ReconcileWithPlan(spec *Spec, source, state map[string]Item) *ReconcilePlan {
	diff := Classify(source, state)
	results := reconcileDiff(spec, diff, source, state)
	summary, actions := buildPlanFromResults(results, source, state)

	return &ReconcilePlan{
		Diff:    diff,
		Results: results,
		Actions: actions,
		Summary: summary,
	}
}

// ApplyPlan executes the actions in a reconcile plan.
// All copy and update actions run first; delete actions start only after every copy has
// finished, successfully or not. A failing action never stops the others: each outcome is
// collected in the report. The only error returned is a missing Mutator implementation.
func ApplyPlan(ctx context.Context, spec *Spec, plan *ReconcilePlan, opts ReconcileOptions) (*ApplyReport, error) {
	report := &ApplyReport{
		Succeeded: []Action{},
		Failed:    []Outcome{},
	}

	if opts.DryRun || plan == nil || len(plan.Actions) == 0 {
		return report, nil
	}

	// Check if adapter implements Mutator
	mutator, ok := spec.Adapter.(Mutator)
	if !ok {
		return nil, fmt.Errorf("adapter %s does not implement Mutator interface", spec.Adapter.Name())
	}

	// Group actions by phase
	var (
		copyActions   []Action
		deleteActions []Action
	)

	for _, action := range plan.Actions {
		switch action.Type {
		case ActionCopy, ActionUpdate:
			copyActions = append(copyActions, action)
		case ActionDelete:
			deleteActions = append(deleteActions, action)
		}
	}

	report.collect(runPhase(ctx, spec.Workers, copyActions, mutator.Copy))
	report.collect(runPhase(ctx, spec.Workers, deleteActions, mutator.Delete))

	return report, nil
}

// runPhase executes actions on at most workers goroutines and returns one outcome per action,
// in the order of actions. It returns after every action has finished.
func runPhase(ctx context.Context, workers int, actions []Action, fn func(context.Context, Action) error) []Outcome {
	outcomes := make([]Outcome, len(actions))
	if len(actions) == 0 {
		return outcomes
	}
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, action := range actions {
		i, action := i, action
		g.Go(func() error {
			outcomes[i] = Outcome{Action: action, Err: fn(ctx, action)}
			// Failures are reported per action and must not cancel siblings
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (r *ApplyReport) collect(outcomes []Outcome) {
	for _, outcome := range outcomes {
		r.Executed++
		if outcome.Err != nil {
			r.Failed = append(r.Failed, outcome)
		} else {
			r.Succeeded = append(r.Succeeded, outcome.Action)
		}
	}
}

// buildPlanFromResults generates a summary and action plan from reconciliation results.
func buildPlanFromResults(results []ReconcileResult, source, state map[string]Item) (PlanSummary, []Action) {
	var summary PlanSummary
	var actions []Action

	summary.TotalItems = len(results)

	for _, result := range results {
		switch {
		case result.SourcePresent && !result.StatePresent:
			summary.Added++
			actions = append(actions, Action{
				Type:   ActionCopy,
				Key:    result.ID,
				Reason: "missing in state",
				Source: source[result.ID],
			})

		case result.SourcePresent && result.StatePresent && len(result.Mismatch) > 0:
			summary.Updated++
			actions = append(actions, Action{
				Type:   ActionUpdate,
				Key:    result.ID,
				Reason: "mismatch: " + strings.Join(result.Mismatch, "; "),
				Source: source[result.ID],
				State:  state[result.ID],
			})

		case result.SourcePresent && result.StatePresent:
			summary.Unchanged++

		case result.StatePresent:
			summary.Removed++
			actions = append(actions, Action{
				Type:   ActionDelete,
				Key:    result.ID,
				Reason: "missing in source",
				State:  state[result.ID],
			})
		}
	}

	return summary, actions
}
