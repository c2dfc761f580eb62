package coursera

import (
	"fmt"
	"net/url"
)

// GetVideoMetadata fetches the skip policy and tracking id for one lecture
// video. Two linked resources come back in a single call.
func (c *Client) GetVideoMetadata(courseID, itemID string) (VideoMetadata, error) {
	params := url.Values{}
	params.Set("includes", "video")
	params.Set("fields", "disableSkippingForward,startMs,endMs")

	var out lectureVideosResponse
	path := fmt.Sprintf("onDemandLectureVideos.v1/%s~%s", courseID, itemID)
	if err := c.GetJSON(path, params, &out); err != nil {
		return VideoMetadata{}, err
	}

	if len(out.Elements) == 0 || len(out.Linked.Videos) == 0 {
		return VideoMetadata{}, fmt.Errorf("incomplete lecture video response for item %s", itemID)
	}

	return VideoMetadata{
		CanSkip:    !out.Elements[0].DisableSkippingForward,
		TrackingID: out.Linked.Videos[0].ID,
		StartMs:    out.Elements[0].StartMs,
		EndMs:      out.Elements[0].EndMs,
	}, nil
}
