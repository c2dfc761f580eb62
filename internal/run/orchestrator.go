package run

import (
	"go.uber.org/zap"

	"github.com/mcao2/skipera/internal/coursera"
)

// State tracks the orchestrator through its fixed phase sequence. No
// transition skips a phase, and every transition happens unconditionally
// once the prior phase's runner returns — failures are item-level, never
// phase-level.
type State int

const (
	StateInit State = iota
	StateClassified
	StateVideosDone
	StateReadingsDone
	StateAssessmentsDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateClassified:
		return "classified"
	case StateVideosDone:
		return "videos_done"
	case StateReadingsDone:
		return "readings_done"
	case StateAssessmentsDone:
		return "assessments_done"
	default:
		return "unknown"
	}
}

// Config holds the caller's choices for one run.
type Config struct {
	Mode         Mode
	Parallel     bool
	VideoWorkers int
}

// Report aggregates the whole run for the final summary.
type Report struct {
	Videos      PhaseSummary
	Readings    PhaseSummary
	Assessments PhaseSummary
	Dropped     int
}

// Failures returns the total failed-item count across phases.
func (r Report) Failures() int {
	return r.Videos.Failed + r.Readings.Failed + r.Assessments.Failed
}

// Orchestrator owns a run: classify, then videos, readings and assessments
// in that order, each phase finishing completely before the next begins.
type Orchestrator struct {
	cfg         Config
	videos      *VideoRunner
	readings    *ReadingRunner
	assessments *AssessmentRunner
	log         *zap.Logger
	notify      func(msg interface{})
	state       State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotify registers a listener for progress messages (PhaseStarted,
// ItemFinished, RunFinished). The listener must be safe for concurrent
// calls: parallel video workers report as they finish.
func WithNotify(fn func(msg interface{})) Option {
	return func(o *Orchestrator) {
		o.notify = fn
		o.videos.notify = fn
		o.readings.notify = fn
		o.assessments.notify = fn
	}
}

// New wires an orchestrator from the three collaborators.
func New(cfg Config, videos VideoCompleter, readings ReadingCompleter, solver AssessmentSolver, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:         cfg,
		videos:      NewVideoRunner(videos, cfg.Parallel, cfg.VideoWorkers, log),
		readings:    NewReadingRunner(readings, log),
		assessments: NewAssessmentRunner(solver, log),
		log:         log,
		state:       StateInit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the orchestrator's current phase state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run drives the full pipeline over the fetched items and returns the
// aggregated report. Per-item failures are logged and isolated; Run itself
// cannot fail once invoked.
func (o *Orchestrator) Run(items []coursera.ContentItem) Report {
	buckets, drops := Classify(items, o.cfg.Mode)
	for _, d := range drops {
		o.log.Debug("skipping item",
			zap.String("item", d.Item.Name),
			zap.String("reason", d.Reason))
	}
	o.state = StateClassified
	o.log.Info("classified items",
		zap.String("mode", o.cfg.Mode.String()),
		zap.Int("videos", len(buckets.Videos)),
		zap.Int("readings", len(buckets.Readings)),
		zap.Int("assessments", len(buckets.Assessments)),
		zap.Int("dropped", len(items)-len(buckets.Videos)-len(buckets.Readings)-len(buckets.Assessments)))

	var report Report
	report.Dropped = len(items) - len(buckets.Videos) - len(buckets.Readings) - len(buckets.Assessments)

	o.send(PhaseStarted{Phase: PhaseVideos, Total: len(buckets.Videos)})
	report.Videos = Summarize(o.videos.Run(buckets.Videos))
	o.state = StateVideosDone
	o.logPhase(PhaseVideos, report.Videos)

	o.send(PhaseStarted{Phase: PhaseReadings, Total: len(buckets.Readings)})
	report.Readings = Summarize(o.readings.Run(buckets.Readings))
	o.state = StateReadingsDone
	o.logPhase(PhaseReadings, report.Readings)

	o.send(PhaseStarted{Phase: PhaseAssessments, Total: len(buckets.Assessments)})
	report.Assessments = Summarize(o.assessments.Run(buckets.Assessments))
	o.state = StateAssessmentsDone
	o.logPhase(PhaseAssessments, report.Assessments)

	o.send(RunFinished{Report: report})
	return report
}

func (o *Orchestrator) logPhase(p Phase, s PhaseSummary) {
	o.log.Info("phase done",
		zap.String("phase", p.String()),
		zap.Int("attempted", s.Attempted),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed))
}

func (o *Orchestrator) send(msg interface{}) {
	if o.notify != nil {
		o.notify(msg)
	}
}
