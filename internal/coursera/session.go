package coursera

// CourseSession binds the shared authenticated client to one course, so the
// per-item pipeline can work in terms of items alone. The session is
// read-only after construction and safe for concurrent use.
type CourseSession struct {
	client   *Client
	courseID string
	slug     string
}

// NewCourseSession creates a session for one course.
func NewCourseSession(client *Client, courseID, slug string) *CourseSession {
	return &CourseSession{
		client:   client,
		courseID: courseID,
		slug:     slug,
	}
}

// CourseID returns the resolved course id.
func (s *CourseSession) CourseID() string {
	return s.courseID
}

// FetchVideoMetadata fetches skip policy and tracking id for one lecture.
func (s *CourseSession) FetchVideoMetadata(item ContentItem) (VideoMetadata, error) {
	return s.client.GetVideoMetadata(s.courseID, item.ID)
}

// Watch simulates playback of one lecture to completion.
func (s *CourseSession) Watch(item ContentItem, meta VideoMetadata) error {
	return NewWatcher(s.client, item, meta, s.client.UserID(), s.slug, s.courseID).Watch()
}

// CompleteReading marks one supplement read.
func (s *CourseSession) CompleteReading(item ContentItem) (bool, error) {
	return s.client.CompleteReading(s.courseID, item.ID, s.client.UserID())
}
