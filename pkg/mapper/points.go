// Package mapper converts tpsync domain results into output patterns.
package mapper

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/pattern"
)

const (
	kindSuccess = "success"
	kindError   = "error"
	kindWarning = "warning"
	kindInfo    = "info"
)

// FromSuitePoints converts a point listing into patterns: one summary plus
// a table per non-empty suite. When details are provided (keyed by test
// case ID), each row carries the work item extras for detailed listings.
func FromSuitePoints(suites []azdo.SuitePoints, details map[int]azdo.TestCaseDetails) []pattern.Pattern {
	var patterns []pattern.Pattern
	patterns = append(patterns, pointsSummary(suites))

	for _, sp := range suites {
		if len(sp.Points) == 0 {
			continue
		}
		rows := make([]pattern.PointRow, 0, len(sp.Points))
		for _, p := range sp.Points {
			row := pattern.PointRow{
				ID:         p.ID,
				Name:       p.TestCaseName,
				Outcome:    outcomeKey(p.Outcome),
				State:      p.State,
				AssignedTo: p.AssignedTo,
				Automated:  p.Automated,
			}
			if d, ok := details[p.TestCaseID]; ok {
				row.Details = detailLines(d)
			}
			rows = append(rows, row)
		}
		patterns = append(patterns, &pattern.PointTable{
			Label:   suiteLabel(sp),
			SuiteID: sp.Suite.ID,
			Points:  rows,
		})
	}
	return patterns
}

func suiteLabel(sp azdo.SuitePoints) string {
	name := sp.Suite.Name
	if name == "" {
		name = fmt.Sprintf("Suite %d", sp.Suite.ID)
	}
	if sp.Suite.Type != "" {
		return fmt.Sprintf("%s (%s, %d points)", name, sp.Suite.Type, len(sp.Points))
	}
	return fmt.Sprintf("%s (%d points)", name, len(sp.Points))
}

func pointsSummary(suites []azdo.SuitePoints) *pattern.Summary {
	total, automated := 0, 0
	byOutcome := map[string]int{}
	byState := map[string]int{}
	for _, sp := range suites {
		for _, p := range sp.Points {
			total++
			if p.Automated {
				automated++
			}
			byOutcome[outcomeKey(p.Outcome)]++
			if p.State != "" {
				byState[p.State]++
			}
		}
	}

	var metrics []pattern.SummaryItem
	if n := byOutcome["passed"]; n > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Passed", Value: fmt.Sprintf("%d", n), Kind: kindSuccess})
	}
	if n := byOutcome["failed"]; n > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Failed", Value: fmt.Sprintf("%d", n), Kind: kindError})
	}
	if n := byOutcome["blocked"]; n > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Blocked", Value: fmt.Sprintf("%d", n), Kind: kindWarning})
	}
	if n := byOutcome[""]; n > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Never run", Value: fmt.Sprintf("%d", n), Kind: kindInfo})
	}
	if other := total - byOutcome["passed"] - byOutcome["failed"] - byOutcome["blocked"] - byOutcome[""]; other > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Other", Value: fmt.Sprintf("%d", other), Kind: kindInfo})
	}
	if automated > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Automated", Value: fmt.Sprintf("%d/%d", automated, total), Kind: kindInfo})
	}
	if len(byState) > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "States", Value: stateSummary(byState), Kind: kindInfo})
	}

	return &pattern.Summary{
		Label:   fmt.Sprintf("%d suites, %d points", len(suites), total),
		Kind:    pattern.SummaryKindPoints,
		Metrics: metrics,
	}
}

// stateSummary formats point states as "2 Ready, 1 Completed", most common
// first.
func stateSummary(byState map[string]int) string {
	type stateCount struct {
		name string
		n    int
	}
	list := make([]stateCount, 0, len(byState))
	for name, n := range byState {
		list = append(list, stateCount{name, n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].n != list[j].n {
			return list[i].n > list[j].n
		}
		return list[i].name < list[j].name
	})
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = fmt.Sprintf("%d %s", s.n, s.name)
	}
	return strings.Join(parts, ", ")
}

// outcomeKey lowercases a service outcome for display rows. The service
// reports never-run points as empty, "none", or "unspecified" depending on
// the endpoint; all three collapse to empty here.
func outcomeKey(o azdo.Outcome) string {
	s := strings.ToLower(strings.TrimSpace(string(o)))
	if s == "none" || s == "unspecified" {
		return ""
	}
	return s
}

func detailLines(d azdo.TestCaseDetails) string {
	var lines []string
	meta := make([]string, 0, 3)
	if d.Priority > 0 {
		meta = append(meta, fmt.Sprintf("priority %d", d.Priority))
	}
	if d.StepCount > 0 {
		meta = append(meta, fmt.Sprintf("%d steps", d.StepCount))
	}
	if d.AutomationStatus != "" {
		meta = append(meta, strings.ToLower(d.AutomationStatus))
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, ", "))
	}
	if d.CreatedBy != "" {
		created := "created by " + d.CreatedBy
		if !d.CreatedAt.IsZero() {
			created += " on " + d.CreatedAt.Format("2006-01-02")
		}
		lines = append(lines, created)
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
