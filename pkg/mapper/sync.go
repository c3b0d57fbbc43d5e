package mapper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dkoosis/tpsync/pkg/apply"
	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/pattern"
	"github.com/dkoosis/tpsync/pkg/plan"
)

// maxLeaderboard caps the lowest-score ranking in detailed output.
const maxLeaderboard = 10

// FromRunSummary converts one sync run into patterns. Failures render
// before successes; unmatched results and the outcome shift follow.
// detailed adds the lowest-score ranking and the score sparkline.
func FromRunSummary(s *apply.Summary, p *plan.Plan, detailed bool) []pattern.Pattern {
	patterns := []pattern.Pattern{runSummary(s)}

	var failed, applied, skipped []pattern.UpdateRow
	for _, r := range s.Results {
		switch {
		case r.Skipped:
			skipped = append(skipped, updateRow(r, pattern.RowSkipped, "run aborted before this point was attempted"))
		case r.Err != nil:
			failed = append(failed, updateRow(r, pattern.RowFailed, r.Err.Error()))
		case r.Simulated:
			applied = append(applied, updateRow(r, pattern.RowSimulated, ""))
		default:
			applied = append(applied, updateRow(r, pattern.RowUpdated, ""))
		}
	}

	if len(failed) > 0 {
		patterns = append(patterns, &pattern.UpdateTable{
			Label: fmt.Sprintf("Failed Updates (%d)", len(failed)),
			Rows:  failed,
		})
	}
	if len(applied) > 0 {
		label := fmt.Sprintf("Updated Points (%d)", len(applied))
		if s.DryRun {
			label = fmt.Sprintf("Planned Updates (%d)", len(applied))
		}
		patterns = append(patterns, &pattern.UpdateTable{Label: label, Rows: applied})
	}
	if len(skipped) > 0 {
		patterns = append(patterns, &pattern.UpdateTable{
			Label: fmt.Sprintf("Not Attempted (%d)", len(skipped)),
			Rows:  skipped,
		})
	}
	if p != nil && len(p.Unmatched) > 0 {
		rows := make([]pattern.UpdateRow, 0, len(p.Unmatched))
		for _, u := range p.Unmatched {
			rows = append(rows, pattern.UpdateRow{
				Name:    u.Source.FullName(),
				Status:  pattern.RowUnmatched,
				Details: u.Reason,
			})
		}
		patterns = append(patterns, &pattern.UpdateTable{
			Label: fmt.Sprintf("Unmatched Results (%d)", len(rows)),
			Rows:  rows,
		})
	}

	if shift := outcomeShift(s); len(shift.Changes) > 0 {
		patterns = append(patterns, shift)
	}
	if detailed {
		if lb := lowestScores(s); len(lb.Items) > 0 {
			patterns = append(patterns, lb)
		}
		if sl := scoreSparkline(s); len(sl.Values) > 0 {
			patterns = append(patterns, sl)
		}
	}
	return patterns
}

func runSummary(s *apply.Summary) *pattern.Summary {
	elapsed := formatDuration(s.FinishedAt.Sub(s.StartedAt))
	skipped := 0
	for _, r := range s.Results {
		if r.Skipped {
			skipped++
		}
	}

	var label string
	switch {
	case s.Aborted:
		label = fmt.Sprintf("ABORTED after %d of %d updates (%s)", s.Attempted, len(s.Results), elapsed)
	case s.DryRun:
		label = fmt.Sprintf("DRY RUN %d points would update (%s)", s.Updated, elapsed)
	case s.Failed > 0:
		label = fmt.Sprintf("SYNCED with errors: %d updated, %d failed (%s)", s.Updated, s.Failed, elapsed)
	default:
		label = fmt.Sprintf("SYNCED %d points (%s)", s.Updated, elapsed)
	}

	var metrics []pattern.SummaryItem
	metrics = append(metrics, pattern.SummaryItem{Label: "Updated", Value: strconv.Itoa(s.Updated), Kind: kindSuccess})
	if s.Failed > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Failed", Value: strconv.Itoa(s.Failed), Kind: kindError})
	}
	if skipped > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Not attempted", Value: strconv.Itoa(skipped), Kind: kindWarning})
	}
	if s.Unmatched > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Unmatched", Value: strconv.Itoa(s.Unmatched), Kind: kindWarning})
	}
	for _, oc := range azdo.Outcomes() {
		if n := s.ByOutcome[oc]; n > 0 {
			metrics = append(metrics, pattern.SummaryItem{
				Label: "Set " + string(oc), Value: strconv.Itoa(n), Kind: kindInfo,
			})
		}
	}
	metrics = append(metrics, pattern.SummaryItem{Label: "Run", Value: s.RunID, Kind: kindInfo})

	return &pattern.Summary{Label: label, Kind: pattern.SummaryKindRun, Metrics: metrics}
}

func updateRow(r apply.UpdateResult, status, details string) pattern.UpdateRow {
	return pattern.UpdateRow{
		Name:    rowName(r.Item),
		PointID: r.Item.PointID,
		Outcome: string(r.Item.TargetOutcome),
		Score:   r.Item.MatchScore,
		Status:  status,
		Details: details,
	}
}

func rowName(item plan.Item) string {
	if item.TestCaseName != "" {
		return item.TestCaseName
	}
	return item.Source.FullName()
}

// outcomeShift tallies the run's points by outcome before and after.
// Failed and skipped items keep their current outcome on both sides.
func outcomeShift(s *apply.Summary) *pattern.Comparison {
	before := map[string]int{}
	after := map[string]int{}
	for _, r := range s.Results {
		if r.Skipped {
			continue
		}
		cur := outcomeLabel(string(r.Item.CurrentOutcome))
		before[cur]++
		if r.Success() {
			after[outcomeLabel(string(r.Item.TargetOutcome))]++
		} else {
			after[cur]++
		}
	}

	labels := []string{outcomeLabel("")}
	for _, oc := range azdo.Outcomes() {
		labels = append(labels, string(oc))
	}

	c := &pattern.Comparison{Label: "Outcome changes"}
	for _, label := range labels {
		b, a := before[label], after[label]
		if b == 0 && a == 0 {
			continue
		}
		c.Changes = append(c.Changes, pattern.ComparisonItem{
			Label:  label,
			Before: strconv.Itoa(b),
			After:  strconv.Itoa(a),
			Change: float64(a - b),
		})
	}
	return c
}

// lowestScores ranks matched items by ascending score so dubious matches
// stand out for review.
func lowestScores(s *apply.Summary) *pattern.Leaderboard {
	type scored struct {
		name     string
		score    int
		strategy string
	}
	var all []scored
	for _, r := range s.Results {
		if r.Skipped || r.Item.MatchScore <= 0 {
			continue
		}
		all = append(all, scored{
			name:     rowName(r.Item),
			score:    r.Item.MatchScore,
			strategy: string(r.Item.MatchStrategy),
		})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score < all[j].score })

	lb := &pattern.Leaderboard{
		Label:      "Lowest-scoring matches",
		MetricName: "Score",
		Direction:  "lowest",
		TotalCount: len(all),
		ShowRank:   true,
	}
	for i, it := range all {
		if i >= maxLeaderboard {
			break
		}
		lb.Items = append(lb.Items, pattern.LeaderboardItem{
			Name:    it.name,
			Metric:  strconv.Itoa(it.score),
			Value:   float64(it.score),
			Rank:    i + 1,
			Context: it.strategy,
		})
	}
	return lb
}

// scoreSparkline plots match scores in plan order on a fixed 0..100 scale.
func scoreSparkline(s *apply.Summary) *pattern.Sparkline {
	sl := &pattern.Sparkline{Label: "Match scores", Max: 100}
	for _, r := range s.Results {
		if r.Skipped || r.Item.MatchScore <= 0 {
			continue
		}
		sl.Values = append(sl.Values, float64(r.Item.MatchScore))
	}
	return sl
}

func outcomeLabel(outcome string) string {
	if strings.TrimSpace(outcome) == "" {
		return "never run"
	}
	return outcome
}
