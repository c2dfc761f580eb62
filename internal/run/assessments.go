package run

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mcao2/skipera/internal/coursera"
)

// AssessmentSolver is the collaborator that runs the full attempt/answer/
// submit sequence for one assessment.
type AssessmentSolver interface {
	Solve(item coursera.ContentItem) error
}

// AssessmentRunner solves assessments strictly in input order. Solving is a
// multi-step session against the server-side current-attempt slot, which is
// not safe to overlap across items.
type AssessmentRunner struct {
	solver AssessmentSolver
	log    *zap.Logger
	notify func(msg interface{})
}

// NewAssessmentRunner creates a runner.
func NewAssessmentRunner(solver AssessmentSolver, log *zap.Logger) *AssessmentRunner {
	return &AssessmentRunner{solver: solver, log: log}
}

// Run solves every assessment, one at a time. A solver error fails the item
// and the runner moves on to the next.
func (r *AssessmentRunner) Run(items []coursera.ContentItem) []Outcome {
	outcomes := make([]Outcome, 0, len(items))
	for _, item := range items {
		r.log.Info("attempting to solve assessment",
			zap.String("item", item.Name),
			zap.String("type", item.Type()))

		var out Outcome
		if err := r.solver.Solve(item); err != nil {
			out = Outcome{Item: item, Err: fmt.Errorf("solving assessment: %w", err)}
			r.log.Warn("failed to process item",
				zap.String("item", item.Name),
				zap.Error(out.Err))
		} else {
			out = Outcome{Item: item}
			r.log.Info("completed", zap.String("item", item.Name))
		}
		if r.notify != nil {
			r.notify(ItemFinished{Phase: PhaseAssessments, Outcome: out})
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}
