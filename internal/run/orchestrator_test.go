package run

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/mcao2/skipera/internal/coursera"
)

// callRecorder timestamps collaborator calls across phases so tests can
// assert the phase ordering.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, kind+":"+id)
}

func (r *callRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

type recordingVideos struct {
	rec     *callRecorder
	failIDs map[string]bool
}

func (f *recordingVideos) FetchVideoMetadata(item coursera.ContentItem) (coursera.VideoMetadata, error) {
	if f.failIDs[item.ID] {
		return coursera.VideoMetadata{}, fmt.Errorf("metadata boom")
	}
	return coursera.VideoMetadata{CanSkip: true}, nil
}

func (f *recordingVideos) Watch(item coursera.ContentItem, meta coursera.VideoMetadata) error {
	f.rec.record("video", item.ID)
	return nil
}

type recordingReadings struct {
	rec      *callRecorder
	softFail bool
	err      error
}

func (f *recordingReadings) CompleteReading(item coursera.ContentItem) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.rec.record("reading", item.ID)
	return !f.softFail, nil
}

type recordingSolver struct {
	rec *callRecorder
	err error
}

func (f *recordingSolver) Solve(item coursera.ContentItem) error {
	if f.err != nil {
		return f.err
	}
	f.rec.record("assessment", item.ID)
	return nil
}

func newTestOrchestrator(cfg Config, rec *callRecorder, opts ...Option) *Orchestrator {
	return New(cfg,
		&recordingVideos{rec: rec},
		&recordingReadings{rec: rec},
		&recordingSolver{rec: rec},
		zap.NewNop(),
		opts...)
}

func standardItems() []coursera.ContentItem {
	return []coursera.ContentItem{
		item("v1", "Video One", coursera.TypeLecture),
		item("v2", "Video Two", coursera.TypeLecture),
		item("r1", "Reading One", coursera.TypeSupplement),
		item("a1", "Quiz One", coursera.TypeUngradedAssignment),
	}
}

func TestOrchestratorStandardMode(t *testing.T) {
	rec := &callRecorder{}
	o := newTestOrchestrator(Config{Mode: ModeStandard}, rec)

	report := o.Run(standardItems())

	if report.Videos.Attempted != 2 {
		t.Errorf("videos attempted = %d, want 2", report.Videos.Attempted)
	}
	if report.Readings.Attempted != 1 {
		t.Errorf("readings attempted = %d, want 1", report.Readings.Attempted)
	}
	if report.Assessments.Attempted != 0 {
		t.Errorf("assessments attempted = %d, want 0", report.Assessments.Attempted)
	}
	if o.State() != StateAssessmentsDone {
		t.Errorf("state = %v, want %v", o.State(), StateAssessmentsDone)
	}

	// videos strictly before readings
	want := []string{"video:v1", "video:v2", "reading:r1"}
	got := rec.kinds()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOrchestratorEVAMode(t *testing.T) {
	rec := &callRecorder{}
	o := newTestOrchestrator(Config{Mode: ModeEVA}, rec)

	report := o.Run(standardItems())

	if report.Videos.Attempted != 0 {
		t.Errorf("videos attempted = %d, want 0", report.Videos.Attempted)
	}
	if report.Readings.Attempted != 0 {
		t.Errorf("readings attempted = %d, want 0", report.Readings.Attempted)
	}
	if report.Assessments.Attempted != 1 {
		t.Errorf("assessments attempted = %d, want 1", report.Assessments.Attempted)
	}

	want := []string{"assessment:a1"}
	got := rec.kinds()
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestOrchestratorVideoFailureDoesNotBlockLaterPhases(t *testing.T) {
	rec := &callRecorder{}
	o := New(Config{Mode: ModeLLM},
		&recordingVideos{rec: rec, failIDs: map[string]bool{"v1": true}},
		&recordingReadings{rec: rec},
		&recordingSolver{rec: rec},
		zap.NewNop())

	report := o.Run(standardItems())

	if report.Videos.Failed != 1 || report.Videos.Succeeded != 1 {
		t.Errorf("videos = %+v, want 1 failed, 1 succeeded", report.Videos)
	}
	if report.Readings.Attempted != 1 || report.Readings.Failed != 0 {
		t.Errorf("readings = %+v, want 1 attempted, 0 failed", report.Readings)
	}
	if report.Assessments.Attempted != 1 {
		t.Errorf("assessments attempted = %d, want 1", report.Assessments.Attempted)
	}
	if o.State() != StateAssessmentsDone {
		t.Errorf("state = %v, want terminal", o.State())
	}
}

func TestOrchestratorReadingSoftFailureProceeds(t *testing.T) {
	rec := &callRecorder{}
	o := New(Config{Mode: ModeStandard},
		&recordingVideos{rec: rec},
		&recordingReadings{rec: rec, softFail: true},
		&recordingSolver{rec: rec},
		zap.NewNop())

	items := []coursera.ContentItem{
		item("r1", "Reading One", coursera.TypeSupplement),
		item("r2", "Reading Two", coursera.TypeSupplement),
	}
	report := o.Run(items)

	// a missing completion marker is logged, not counted as a failure
	if report.Readings.Attempted != 2 || report.Readings.Failed != 0 {
		t.Errorf("readings = %+v, want 2 attempted, 0 failed", report.Readings)
	}
}

func TestOrchestratorReadingErrorIsolated(t *testing.T) {
	rec := &callRecorder{}
	o := New(Config{Mode: ModeLLM},
		&recordingVideos{rec: rec},
		&recordingReadings{rec: rec, err: fmt.Errorf("network down")},
		&recordingSolver{rec: rec},
		zap.NewNop())

	report := o.Run(standardItems())

	if report.Readings.Failed != 1 {
		t.Errorf("readings failed = %d, want 1", report.Readings.Failed)
	}
	// assessments still ran
	if report.Assessments.Attempted != 1 {
		t.Errorf("assessments attempted = %d, want 1", report.Assessments.Attempted)
	}
}

func TestOrchestratorSolverErrorIsolated(t *testing.T) {
	rec := &callRecorder{}
	items := []coursera.ContentItem{
		item("a1", "Quiz One", coursera.TypeUngradedAssignment),
		item("a2", "Quiz Two", coursera.TypeUngradedAssignment),
	}

	failing := &recordingSolver{rec: rec, err: fmt.Errorf("solver boom")}
	o := New(Config{Mode: ModeEVA},
		&recordingVideos{rec: rec},
		&recordingReadings{rec: rec},
		failing,
		zap.NewNop())

	report := o.Run(items)

	if report.Assessments.Attempted != 2 || report.Assessments.Failed != 2 {
		t.Errorf("assessments = %+v, want 2 attempted, 2 failed", report.Assessments)
	}
	if o.State() != StateAssessmentsDone {
		t.Errorf("state = %v, want terminal", o.State())
	}
}

func TestOrchestratorNotifySequence(t *testing.T) {
	rec := &callRecorder{}
	var mu sync.Mutex
	var msgs []interface{}

	o := newTestOrchestrator(Config{Mode: ModeStandard}, rec,
		WithNotify(func(msg interface{}) {
			mu.Lock()
			msgs = append(msgs, msg)
			mu.Unlock()
		}))

	o.Run(standardItems())

	mu.Lock()
	defer mu.Unlock()

	var phases, finished, runs int
	for _, msg := range msgs {
		switch msg.(type) {
		case PhaseStarted:
			phases++
		case ItemFinished:
			finished++
		case RunFinished:
			runs++
		}
	}
	if phases != 3 {
		t.Errorf("PhaseStarted count = %d, want 3", phases)
	}
	if finished != 3 { // 2 videos + 1 reading
		t.Errorf("ItemFinished count = %d, want 3", finished)
	}
	if runs != 1 {
		t.Errorf("RunFinished count = %d, want 1", runs)
	}
	if _, ok := msgs[len(msgs)-1].(RunFinished); !ok {
		t.Errorf("last message is %T, want RunFinished", msgs[len(msgs)-1])
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome{
		{Item: item("a", "A", coursera.TypeLecture)},
		{Item: item("b", "B", coursera.TypeLecture), Err: fmt.Errorf("boom")},
		{Item: item("c", "C", coursera.TypeLecture)},
	}
	got := Summarize(outcomes)
	want := PhaseSummary{Attempted: 3, Succeeded: 2, Failed: 1}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}
