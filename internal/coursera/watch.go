package coursera

import (
	"fmt"
)

// watchChunkMs is how far each synthetic progress report advances playback
// when forward skipping is disabled. Large enough to keep the event count
// low on hour-long lectures, small enough to look like real playback.
const watchChunkMs = 5 * 60 * 1000

// Watcher simulates playback of one lecture video by reporting synthetic
// progress events until the platform marks the item complete.
type Watcher struct {
	client   *Client
	item     ContentItem
	meta     VideoMetadata
	userID   string
	slug     string
	courseID string
}

// NewWatcher binds a watch simulation to one item and its metadata.
func NewWatcher(client *Client, item ContentItem, meta VideoMetadata, userID, slug, courseID string) *Watcher {
	return &Watcher{
		client:   client,
		item:     item,
		meta:     meta,
		userID:   userID,
		slug:     slug,
		courseID: courseID,
	}
}

// Watch drives the progress-report sequence. When skipping is allowed a
// single jump to the end suffices; otherwise playback position walks forward
// chunk by chunk so the server-side skip guard accepts each report.
func (w *Watcher) Watch() error {
	if err := w.sendEvent("start", w.meta.StartMs); err != nil {
		return fmt.Errorf("start event: %w", err)
	}

	if !w.meta.CanSkip {
		for pos := w.meta.StartMs + watchChunkMs; pos < w.meta.EndMs; pos += watchChunkMs {
			if err := w.sendEvent("progress", pos); err != nil {
				return fmt.Errorf("progress event at %dms: %w", pos, err)
			}
		}
	}

	if err := w.sendEvent("ended", w.meta.EndMs); err != nil {
		return fmt.Errorf("ended event: %w", err)
	}
	return nil
}

func (w *Watcher) sendEvent(event string, positionMs int64) error {
	path := fmt.Sprintf("opencourse.v1/user/%s/course/%s/item/%s/lecture/videoEvents/%s?autoEnroll=false",
		w.userID, w.slug, w.item.ID, event)

	payload := map[string]interface{}{
		"contentRequestBody": map[string]interface{}{
			"trackingId": w.meta.TrackingID,
			"courseId":   w.courseID,
			"value":      positionMs,
		},
	}

	if _, err := w.client.PostJSON(path, payload); err != nil {
		return err
	}
	return nil
}
