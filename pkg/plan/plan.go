// Package plan reconciles parsed XML test outcomes with a snapshot of test
// points and produces an ordered update plan. Building a plan is pure: no
// service calls, no side effects, deterministic for identical inputs.
package plan

import (
	"fmt"
	"strings"

	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/fuzzy"
	"github.com/dkoosis/tpsync/pkg/junitxml"
)

// Item is one planned update: an XML outcome applied to the test point that
// claimed it. Each item references exactly one point and one source outcome;
// a point appears in at most one item per plan.
type Item struct {
	PointID        int
	SuiteID        int
	PlanID         int
	TestCaseID     int
	TestCaseName   string
	CurrentOutcome azdo.Outcome
	TargetOutcome  azdo.Outcome
	Comment        string
	Source         junitxml.TestOutcome
	MatchScore     int
	MatchStrategy  fuzzy.Strategy
}

// Unmatched records an XML outcome that claimed no point.
type Unmatched struct {
	Source junitxml.TestOutcome
	Reason string
}

// Plan is the ordered result of one reconciliation pass.
type Plan struct {
	Items     []Item
	Unmatched []Unmatched
}

// UnmatchedCount returns the unmatched tally for the summary.
func (p *Plan) UnmatchedCount() int { return len(p.Unmatched) }

// CommentFunc renders the comment attached to an item. Implementations
// must not fail; a renderer that cannot expand its template falls back to
// literal text.
type CommentFunc func(Item) string

// Options configure Build.
type Options struct {
	// MinScore is the match accept threshold; zero means the default.
	MinScore int
	// OutcomeFilter restricts eligible points to those whose current
	// outcome is in the list. Empty means every point is eligible.
	OutcomeFilter []azdo.Outcome
	// Comment, when set, renders each item's comment.
	Comment CommentFunc
}

// Build walks outcomes in order and resolves each against the points not
// yet claimed by an earlier item, first come first served. An outcome whose
// normalized name is empty, or that no candidate matches at the threshold,
// is tallied as unmatched and never fails the build.
func Build(outcomes []junitxml.TestOutcome, points []azdo.TestPoint, opts Options) *Plan {
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = fuzzy.DefaultMinScore
	}

	// Candidate names are normalized once; the claim loop reuses them.
	normalized := make([]string, len(points))
	for i, p := range points {
		normalized[i] = fuzzy.Normalize(p.TestCaseName)
	}

	result := &Plan{}
	claimed := make([]bool, len(points))

	for _, outcome := range outcomes {
		query := fuzzy.Normalize(outcome.Name)
		if query == "" {
			result.Unmatched = append(result.Unmatched, Unmatched{
				Source: outcome,
				Reason: "name is empty after normalization",
			})
			continue
		}

		candidates := make([]fuzzy.Candidate, 0, len(points))
		for i := range points {
			if claimed[i] {
				continue
			}
			if !outcomeEligible(points[i].Outcome, opts.OutcomeFilter) {
				continue
			}
			candidates = append(candidates, fuzzy.Candidate{Index: i, Name: normalized[i]})
		}

		match, ok := fuzzy.BestMatch(query, candidates, minScore)
		if !ok {
			result.Unmatched = append(result.Unmatched, Unmatched{
				Source: outcome,
				Reason: fmt.Sprintf("no candidate scored at least %d", minScore),
			})
			continue
		}

		idx := match.Candidate.Index
		claimed[idx] = true
		point := points[idx]

		item := Item{
			PointID:        point.ID,
			SuiteID:        point.SuiteID,
			PlanID:         point.PlanID,
			TestCaseID:     point.TestCaseID,
			TestCaseName:   point.TestCaseName,
			CurrentOutcome: point.Outcome,
			TargetOutcome:  MapOutcome(outcome.Status),
			Source:         outcome,
			MatchScore:     match.Score,
			MatchStrategy:  match.Strategy,
		}
		if opts.Comment != nil {
			item.Comment = opts.Comment(item)
		}
		result.Items = append(result.Items, item)
	}

	return result
}

// MapOutcome is the fixed mapping from a parsed XML status to the outcome
// recorded on the service. Unrecognized statuses map to None, matching the
// service's "no outcome" value.
func MapOutcome(status junitxml.Status) azdo.Outcome {
	switch junitxml.Status(strings.ToLower(string(status))) {
	case junitxml.StatusPassed:
		return azdo.OutcomePassed
	case junitxml.StatusFailed, junitxml.StatusError:
		return azdo.OutcomeFailed
	case junitxml.StatusSkipped:
		return azdo.OutcomeBlocked
	default:
		return azdo.OutcomeNone
	}
}

func outcomeEligible(current azdo.Outcome, filter []azdo.Outcome) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if current.Is(f) {
			return true
		}
	}
	return false
}
