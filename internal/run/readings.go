package run

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mcao2/skipera/internal/coursera"
)

// ReadingCompleter is the collaborator that issues the supplement completion
// call. The bool reports whether the platform acknowledged the completion.
type ReadingCompleter interface {
	CompleteReading(item coursera.ContentItem) (bool, error)
}

// ReadingRunner completes supplements strictly in input order. Completion
// calls are cheap, but they mutate account-level progress state the platform
// may process with internal ordering assumptions, so no fan-out here.
type ReadingRunner struct {
	completer ReadingCompleter
	log       *zap.Logger
	notify    func(msg interface{})
}

// NewReadingRunner creates a runner.
func NewReadingRunner(completer ReadingCompleter, log *zap.Logger) *ReadingRunner {
	return &ReadingRunner{completer: completer, log: log}
}

// Run completes every reading, one at a time. Transport errors fail the
// item; a missing completion acknowledgement is only a soft failure, logged
// and not counted against the summary.
func (r *ReadingRunner) Run(items []coursera.ContentItem) []Outcome {
	outcomes := make([]Outcome, 0, len(items))
	for _, item := range items {
		var out Outcome
		marked, err := r.completer.CompleteReading(item)
		switch {
		case err != nil:
			out = Outcome{Item: item, Err: fmt.Errorf("completing reading: %w", err)}
			r.log.Warn("failed to process item",
				zap.String("item", item.Name),
				zap.Error(out.Err))
		case !marked:
			out = Outcome{Item: item}
			r.log.Debug("completion not acknowledged", zap.String("item", item.Name))
		default:
			out = Outcome{Item: item}
			r.log.Info("completed", zap.String("item", item.Name))
		}
		if r.notify != nil {
			r.notify(ItemFinished{Phase: PhaseReadings, Outcome: out})
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}
