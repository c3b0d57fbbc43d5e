package plan

import (
	"strings"

	"github.com/dkoosis/tpsync/pkg/azdo"
)

// Criteria filters points for criteria-based bulk updates. Zero-value
// fields do not filter.
type Criteria struct {
	Outcome      azdo.Outcome
	State        string
	Automated    *bool
	NameContains string
}

// Matches reports whether a point satisfies every set criterion. String
// comparisons are case-insensitive.
func (c Criteria) Matches(p azdo.TestPoint) bool {
	if c.Outcome != "" && !p.Outcome.Is(c.Outcome) {
		return false
	}
	if c.State != "" && !strings.EqualFold(p.State, c.State) {
		return false
	}
	if c.Automated != nil && p.Automated != *c.Automated {
		return false
	}
	if c.NameContains != "" &&
		!strings.Contains(strings.ToLower(p.TestCaseName), strings.ToLower(c.NameContains)) {
		return false
	}
	return true
}

// FromCriteria builds a plan that sets every matching point to the same
// target outcome. Items carry no XML source; comment templates see empty
// result fields.
func FromCriteria(points []azdo.TestPoint, target azdo.Outcome, criteria Criteria, comment CommentFunc) *Plan {
	result := &Plan{}
	for _, point := range points {
		if !criteria.Matches(point) {
			continue
		}
		item := Item{
			PointID:        point.ID,
			SuiteID:        point.SuiteID,
			PlanID:         point.PlanID,
			TestCaseID:     point.TestCaseID,
			TestCaseName:   point.TestCaseName,
			CurrentOutcome: point.Outcome,
			TargetOutcome:  target,
		}
		if comment != nil {
			item.Comment = comment(item)
		}
		result.Items = append(result.Items, item)
	}
	return result
}
