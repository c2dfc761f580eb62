package coursera

// Content item type tags as reported by the on-demand materials API.
const (
	TypeLecture            = "lecture"
	TypeSupplement         = "supplement"
	TypeUngradedAssignment = "ungradedAssignment"
	TypeStaffGraded        = "staffGraded"
)

// ContentSummary carries the type tag for a content item
type ContentSummary struct {
	TypeName string `json:"typeName"`
}

// ContentItem represents one unit in the course's material graph.
// Items are immutable once fetched; processing never mutates them.
type ContentItem struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	ContentSummary ContentSummary `json:"contentSummary"`
	IsLocked       bool           `json:"isLocked"`
}

// Type returns the item's type tag
func (i ContentItem) Type() string {
	return i.ContentSummary.TypeName
}

// CourseMaterials is the consumed slice of the materials response: the
// course id plus the flat item list across all modules.
type CourseMaterials struct {
	CourseID string
	Modules  int
	Items    []ContentItem
}

// VideoMetadata holds the per-video attributes needed to simulate a watch.
// Fetched just-in-time and never persisted.
type VideoMetadata struct {
	CanSkip    bool
	TrackingID string
	StartMs    int64
	EndMs      int64
}

// materialsResponse mirrors the wire shape of onDemandCourseMaterials.v2
type materialsResponse struct {
	Elements []struct {
		ID string `json:"id"`
	} `json:"elements"`
	Linked struct {
		Modules []struct {
			Name string `json:"name"`
		} `json:"onDemandCourseMaterialModules.v1"`
		Items []ContentItem `json:"onDemandCourseMaterialItems.v2"`
	} `json:"linked"`
}

// lectureVideosResponse mirrors the wire shape of onDemandLectureVideos.v1
type lectureVideosResponse struct {
	Elements []struct {
		DisableSkippingForward bool  `json:"disableSkippingForward"`
		StartMs                int64 `json:"startMs"`
		EndMs                  int64 `json:"endMs"`
	} `json:"elements"`
	Linked struct {
		Videos []struct {
			ID string `json:"id"`
		} `json:"onDemandVideos.v1"`
	} `json:"linked"`
}

// userPermissionsResponse mirrors the wire shape of adminUserPermissions.v1
type userPermissionsResponse struct {
	Elements []struct {
		ID string `json:"id"`
	} `json:"elements"`
	ErrorCode string `json:"errorCode"`
}
