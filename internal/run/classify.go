package run

import (
	"github.com/mcao2/skipera/internal/coursera"
)

// Mode selects which item types a run attempts.
type Mode int

const (
	// ModeStandard processes videos and readings, skipping assessments.
	ModeStandard Mode = iota
	// ModeLLM additionally attempts graded and ungraded assessments.
	ModeLLM
	// ModeEVA processes only assessments, skipping videos and readings.
	ModeEVA
)

// NewMode resolves the CLI flags into a single effective mode. When both
// flags are set, eva wins.
func NewMode(llm, eva bool) Mode {
	if eva {
		return ModeEVA
	}
	if llm {
		return ModeLLM
	}
	return ModeStandard
}

func (m Mode) String() string {
	switch m {
	case ModeLLM:
		return "llm"
	case ModeEVA:
		return "eva"
	default:
		return "standard"
	}
}

// SolvesAssessments reports whether this mode opts in to assessment solving.
func (m Mode) SolvesAssessments() bool {
	return m == ModeLLM || m == ModeEVA
}

// Buckets holds the classified item sequences, each preserving the
// platform's original item order.
type Buckets struct {
	Videos      []coursera.ContentItem
	Readings    []coursera.ContentItem
	Assessments []coursera.ContentItem
}

// Drop records an item excluded from the run along with the reason, for
// trace logging. Silent exclusions (unknown types, staff-graded work without
// opt-in) produce no Drop.
type Drop struct {
	Item   coursera.ContentItem
	Reason string
}

// Classify partitions the flat item list into typed buckets according to the
// run mode. Pure function: no side effects, every item lands in exactly one
// bucket or is dropped.
func Classify(items []coursera.ContentItem, mode Mode) (Buckets, []Drop) {
	var b Buckets
	var drops []Drop

	for _, item := range items {
		switch item.Type() {
		case coursera.TypeLecture:
			if mode == ModeEVA {
				drops = append(drops, Drop{Item: item, Reason: "eva mode - only assessments"})
				continue
			}
			b.Videos = append(b.Videos, item)
		case coursera.TypeSupplement:
			if mode == ModeEVA {
				drops = append(drops, Drop{Item: item, Reason: "eva mode - only assessments"})
				continue
			}
			b.Readings = append(b.Readings, item)
		case coursera.TypeUngradedAssignment:
			if !mode.SolvesAssessments() {
				drops = append(drops, Drop{Item: item, Reason: "assessment solving not requested"})
				continue
			}
			b.Assessments = append(b.Assessments, item)
		case coursera.TypeStaffGraded:
			// Never auto-attempted without explicit opt-in, and never
			// worth a trace line when it isn't.
			if !mode.SolvesAssessments() {
				continue
			}
			b.Assessments = append(b.Assessments, item)
		default:
			// Exams, discussion prompts, peer reviews and whatever else
			// the platform adds are out of scope.
		}
	}

	return b, drops
}
