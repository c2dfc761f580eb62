package run

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mcao2/skipera/internal/coursera"
)

// DefaultVideoWorkers caps concurrent video processing. Fast in practice
// while staying below the platform's per-session rate-limit trigger.
const DefaultVideoWorkers = 30

// VideoCompleter is the collaborator that fetches per-video metadata and
// simulates the watch.
type VideoCompleter interface {
	FetchVideoMetadata(item coursera.ContentItem) (coursera.VideoMetadata, error)
	Watch(item coursera.ContentItem, meta coursera.VideoMetadata) error
}

// VideoRunner drives each lecture video to completion, sequentially or
// through a bounded worker pool. Individual failures are isolated: a failing
// item never aborts its siblings or the batch.
type VideoRunner struct {
	completer VideoCompleter
	parallel  bool
	workers   int
	log       *zap.Logger
	notify    func(msg interface{})
}

// NewVideoRunner creates a runner. workers <= 0 selects the default cap.
func NewVideoRunner(completer VideoCompleter, parallel bool, workers int, log *zap.Logger) *VideoRunner {
	if workers <= 0 {
		workers = DefaultVideoWorkers
	}
	return &VideoRunner{
		completer: completer,
		parallel:  parallel,
		workers:   workers,
		log:       log,
	}
}

// Run processes every video and returns one outcome per item. In parallel
// mode outcomes come back in completion order; otherwise in input order.
// The call blocks until every submitted item has finished — there is no
// early-abort path.
func (r *VideoRunner) Run(items []coursera.ContentItem) []Outcome {
	if len(items) == 0 {
		return nil
	}
	if r.parallel {
		return r.runParallel(items)
	}
	return r.runSequential(items)
}

func (r *VideoRunner) runSequential(items []coursera.ContentItem) []Outcome {
	outcomes := make([]Outcome, 0, len(items))
	for _, item := range items {
		out := r.processOne(item)
		r.report(out)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (r *VideoRunner) runParallel(items []coursera.ContentItem) []Outcome {
	r.log.Info("processing videos in parallel",
		zap.Int("count", len(items)),
		zap.Int("max_workers", r.workers))

	// Each worker emits exactly one outcome message; aggregation happens
	// after the join so no counter is shared across workers.
	results := make(chan Outcome, len(items))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, item := range items {
		item := item
		g.Go(func() error {
			out := r.processOne(item)
			r.report(out)
			results <- out
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	outcomes := make([]Outcome, 0, len(items))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (r *VideoRunner) processOne(item coursera.ContentItem) Outcome {
	r.log.Debug("starting", zap.String("item", item.Name))

	meta, err := r.completer.FetchVideoMetadata(item)
	if err != nil {
		return Outcome{Item: item, Err: fmt.Errorf("fetching video metadata: %w", err)}
	}
	if err := r.completer.Watch(item, meta); err != nil {
		return Outcome{Item: item, Err: fmt.Errorf("simulating watch: %w", err)}
	}
	return Outcome{Item: item}
}

func (r *VideoRunner) report(out Outcome) {
	if out.Failed() {
		r.log.Warn("failed to process item",
			zap.String("item", out.Item.Name),
			zap.Error(out.Err))
	} else {
		r.log.Info("completed", zap.String("item", out.Item.Name))
	}
	if r.notify != nil {
		r.notify(ItemFinished{Phase: PhaseVideos, Outcome: out})
	}
}
