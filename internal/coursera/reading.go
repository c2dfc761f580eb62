package coursera

import (
	"strconv"
	"strings"
)

// completionMarker is the literal the platform echoes back when a supplement
// completion actually registered.
const completionMarker = "Completed"

// CompleteReading marks one supplement item read. The returned bool reports
// whether the platform acknowledged the completion; false with a nil error
// is a soft failure the caller logs and moves past.
func (c *Client) CompleteReading(courseID, itemID, userID string) (bool, error) {
	uid, err := strconv.Atoi(userID)
	if err != nil {
		return false, err
	}

	body, err := c.PostJSON("onDemandSupplementCompletions.v1", map[string]interface{}{
		"courseId": courseID,
		"itemId":   itemID,
		"userId":   uid,
	})
	if err != nil {
		return false, err
	}

	return strings.Contains(body, completionMarker), nil
}
