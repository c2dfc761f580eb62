package run

import (
	"github.com/mcao2/skipera/internal/coursera"
)

// Outcome is the tagged per-item result every runner produces: either the
// item completed, or it failed with a cause. Failures never escalate past
// the item boundary.
type Outcome struct {
	Item coursera.ContentItem
	Err  error
}

// Failed reports whether the item failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// PhaseSummary aggregates one phase's outcomes for logging.
type PhaseSummary struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Summarize folds a phase's outcomes into counts.
func Summarize(outcomes []Outcome) PhaseSummary {
	s := PhaseSummary{Attempted: len(outcomes)}
	for _, o := range outcomes {
		if o.Failed() {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}

// Phase identifies one of the three sequential processing stages.
type Phase int

const (
	PhaseVideos Phase = iota
	PhaseReadings
	PhaseAssessments
)

func (p Phase) String() string {
	switch p {
	case PhaseVideos:
		return "videos"
	case PhaseReadings:
		return "readings"
	case PhaseAssessments:
		return "assessments"
	default:
		return "unknown"
	}
}

// Progress messages emitted to an optional listener (the TUI dashboard).

// PhaseStarted announces a phase and how many items it will attempt.
type PhaseStarted struct {
	Phase Phase
	Total int
}

// ItemFinished carries one item's outcome as soon as it is known. Under
// parallel video processing these arrive in completion order.
type ItemFinished struct {
	Phase   Phase
	Outcome Outcome
}

// RunFinished carries the final report once the orchestrator reaches its
// terminal state.
type RunFinished struct {
	Report Report
}
