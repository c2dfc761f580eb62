package coursera

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func watchResponses(n int) []*http.Response {
	out := make([]*http.Response, n)
	for i := range out {
		out[i] = jsonResponse(http.StatusOK, `{}`)
	}
	return out
}

func eventNames(t *testing.T, reqs []*http.Request) []string {
	t.Helper()
	names := make([]string, 0, len(reqs))
	for _, req := range reqs {
		parts := strings.Split(req.URL.Path, "/")
		names = append(names, parts[len(parts)-1])
	}
	return names
}

func TestWatcherSkippable(t *testing.T) {
	mock := &mockHTTPClient{responses: watchResponses(2)}
	client, _ := NewClient("cookie", WithHTTPClient(mock))

	item := ContentItem{ID: "v1", Name: "Welcome"}
	meta := VideoMetadata{CanSkip: true, TrackingID: "trk", StartMs: 0, EndMs: 600000}

	w := NewWatcher(client, item, meta, "123", "go-course", "course-abc")
	if err := w.Watch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// skipping allowed: start then jump straight to ended
	got := eventNames(t, mock.requests)
	want := []string{"start", "ended"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestWatcherNoSkipWalksForward(t *testing.T) {
	// 16 minutes of video with 5-minute chunks: 3 progress reports
	mock := &mockHTTPClient{responses: watchResponses(5)}
	client, _ := NewClient("cookie", WithHTTPClient(mock))

	item := ContentItem{ID: "v1", Name: "Long Lecture"}
	meta := VideoMetadata{CanSkip: false, TrackingID: "trk", StartMs: 0, EndMs: 16 * 60 * 1000}

	w := NewWatcher(client, item, meta, "123", "go-course", "course-abc")
	if err := w.Watch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := eventNames(t, mock.requests)
	want := []string{"start", "progress", "progress", "progress", "ended"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestWatcherEventPayload(t *testing.T) {
	mock := &mockHTTPClient{responses: watchResponses(2)}
	client, _ := NewClient("cookie", WithHTTPClient(mock))

	item := ContentItem{ID: "v1", Name: "Welcome"}
	meta := VideoMetadata{CanSkip: true, TrackingID: "trk-42", StartMs: 0, EndMs: 1000}

	w := NewWatcher(client, item, meta, "123", "go-course", "course-abc")
	if err := w.Watch(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := mock.requests[0]
	if !strings.Contains(req.URL.Path, "/user/123/course/go-course/item/v1/") {
		t.Errorf("unexpected event path: %s", req.URL.Path)
	}

	raw, _ := io.ReadAll(req.Body)
	var payload struct {
		ContentRequestBody struct {
			TrackingID string `json:"trackingId"`
			CourseID   string `json:"courseId"`
		} `json:"contentRequestBody"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.ContentRequestBody.TrackingID != "trk-42" {
		t.Errorf("trackingId = %q, want trk-42", payload.ContentRequestBody.TrackingID)
	}
	if payload.ContentRequestBody.CourseID != "course-abc" {
		t.Errorf("courseId = %q, want course-abc", payload.ContentRequestBody.CourseID)
	}
}

func TestWatcherPropagatesFailure(t *testing.T) {
	mock := &mockHTTPClient{
		responses: []*http.Response{jsonResponse(http.StatusForbidden, "")},
	}
	client, _ := NewClient("cookie", WithHTTPClient(mock))

	item := ContentItem{ID: "v1", Name: "Welcome"}
	meta := VideoMetadata{CanSkip: true, EndMs: 1000}

	w := NewWatcher(client, item, meta, "123", "go-course", "course-abc")
	if err := w.Watch(); err == nil {
		t.Error("expected error when event POST is rejected")
	}
}

func TestCompleteReading(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		status     int
		wantMarked bool
		wantError  bool
	}{
		{
			name:       "acknowledged",
			body:       `{"contentResponseBody":{"state":"Completed"}}`,
			status:     http.StatusOK,
			wantMarked: true,
		},
		{
			name:       "missing marker is a soft failure",
			body:       `{"contentResponseBody":{}}`,
			status:     http.StatusOK,
			wantMarked: false,
		},
		{
			name:      "transport rejection",
			body:      "",
			status:    http.StatusBadRequest,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{
				responses: []*http.Response{jsonResponse(tt.status, tt.body)},
			}

			client, _ := NewClient("cookie", WithHTTPClient(mock))
			marked, err := client.CompleteReading("course-abc", "r1", "123")

			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if marked != tt.wantMarked {
				t.Errorf("marked = %v, want %v", marked, tt.wantMarked)
			}
		})
	}
}

func TestCompleteReadingPayload(t *testing.T) {
	mock := &mockHTTPClient{
		responses: []*http.Response{jsonResponse(http.StatusOK, "Completed")},
	}

	client, _ := NewClient("cookie", WithHTTPClient(mock))
	if _, err := client.CompleteReading("course-abc", "r1", "123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, _ := io.ReadAll(mock.requests[0].Body)
	var payload struct {
		CourseID string `json:"courseId"`
		ItemID   string `json:"itemId"`
		UserID   int    `json:"userId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.CourseID != "course-abc" || payload.ItemID != "r1" {
		t.Errorf("payload = %+v", payload)
	}
	// the API wants the numeric user id
	if payload.UserID != 123 {
		t.Errorf("userId = %d, want 123", payload.UserID)
	}
}

func TestCompleteReadingNonNumericUserID(t *testing.T) {
	client, _ := NewClient("cookie", WithHTTPClient(&mockHTTPClient{}))
	if _, err := client.CompleteReading("course-abc", "r1", "not-a-number"); err == nil {
		t.Error("expected error for non-numeric user id")
	}
}
