package colle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
)

// SolveTimeBudget is the per-attempt wall-clock budget for each escalation
// tier.
const SolveTimeBudget = 30 * time.Second

// Solve runs the three-tier escalation described in the constraint model:
// strict, then relaxed, then maximize. It returns the first feasible (or
// optimal) solution. If all three tiers fail, it returns a NoSolutionError.
func Solve(ctx context.Context, catalog Catalog, policy AlternationPolicy) (SolveResult, error) {
	for _, mode := range []Mode{ModeStrict, ModeRelaxed, ModeMaximize} {
		result, ok, err := attemptSolve(ctx, catalog, policy, mode)
		if err != nil {
			return SolveResult{}, err
		}
		if ok {
			return result, nil
		}
	}
	return SolveResult{}, &NoSolutionError{LastMode: ModeMaximize}
}

// attemptSolve builds and solves the model for a single tier, bounded by
// SolveTimeBudget. It returns ok=false (no error) when the solver reaches
// the budget or proves infeasibility, signalling the caller to escalate.
func attemptSolve(ctx context.Context, catalog Catalog, policy AlternationPolicy, mode Mode) (SolveResult, bool, error) {
	model, err := BuildModel(catalog, policy, mode)
	if err != nil {
		return SolveResult{}, false, err
	}

	built, err := model.Builder.Model()
	if err != nil {
		return SolveResult{}, false, fmt.Errorf("instantiate CP model (%s): %w", mode, err)
	}

	type solveOutcome struct {
		response *cmpb.CpSolverResponse
		err      error
	}
	done := make(chan solveOutcome, 1)

	solveCtx, cancel := context.WithTimeout(ctx, SolveTimeBudget)
	defer cancel()

	go func() {
		response, solveErr := cpmodel.SolveCpModel(built)
		done <- solveOutcome{response: response, err: solveErr}
	}()

	select {
	case <-solveCtx.Done():
		return SolveResult{}, false, nil
	case outcome := <-done:
		if outcome.err != nil {
			return SolveResult{}, false, fmt.Errorf("solve CP model (%s): %w", mode, outcome.err)
		}
		status := outcome.response.GetStatus()
		if status != cmpb.CpSolverStatus_OPTIMAL && status != cmpb.CpSolverStatus_FEASIBLE {
			return SolveResult{}, false, nil
		}
		assignment := materialize(model, outcome.response)
		return SolveResult{Mode: mode, Assignment: assignment}, true, nil
	}
}
