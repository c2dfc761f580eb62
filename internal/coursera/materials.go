package coursera

import (
	"fmt"
	"net/url"
)

// Field/include parameter sets for the materials query. The API only returns
// what is asked for, so these mirror the full set the item pipeline needs.
const (
	materialsIncludes = "modules,lessons,passableItemGroups,passableItemGroupChoices,passableLessonElements,items," +
		"tracks,gradePolicy,gradingParameters,embeddedContentMapping"
	materialsFields = "moduleIds,onDemandCourseMaterialModules.v1(name,slug,description,timeCommitment,lessonIds," +
		"optional,learningObjectives),onDemandCourseMaterialLessons.v1(name,slug,timeCommitment," +
		"elementIds,optional,trackId),onDemandCourseMaterialPassableItemGroups.v1(requiredPassedCount," +
		"passableItemGroupChoiceIds,trackId),onDemandCourseMaterialPassableItemGroupChoices.v1(name," +
		"description,itemIds),onDemandCourseMaterialPassableLessonElements.v1(gradingWeight," +
		"isRequiredForPassing),onDemandCourseMaterialItems.v2(name,originalName,slug,timeCommitment," +
		"contentSummary,isLocked,lockableByItem,itemLockedReasonCode,trackId,lockedStatus,itemLockSummary," +
		"customDisplayTypenameOverride),onDemandCourseMaterialTracks.v1(passablesCount)," +
		"onDemandGradingParameters.v1(gradedAssignmentGroups)," +
		"contentAtomRelations.v1(embeddedContentSourceCourseId,subContainerId)"
)

// GetCourseMaterials fetches the course's material graph by slug and returns
// the course id plus the flat content-item list.
func (c *Client) GetCourseMaterials(slug string) (*CourseMaterials, error) {
	params := url.Values{}
	params.Set("q", "slug")
	params.Set("slug", slug)
	params.Set("includes", materialsIncludes)
	params.Set("fields", materialsFields)
	params.Set("showLockedItems", "true")

	var out materialsResponse
	if err := c.GetJSON("onDemandCourseMaterials.v2/", params, &out); err != nil {
		return nil, err
	}

	if len(out.Elements) == 0 {
		return nil, fmt.Errorf("no course found for slug %q", slug)
	}

	return &CourseMaterials{
		CourseID: out.Elements[0].ID,
		Modules:  len(out.Linked.Modules),
		Items:    out.Linked.Items,
	}, nil
}
