package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/tpsync/pkg/pattern"
)

// Plain renders patterns as terse plain text for piped or logged output.
// Zero ANSI codes, deterministic, detail blocks truncated to a few lines.
type Plain struct{}

// NewPlain creates a plain-text renderer.
func NewPlain() *Plain {
	return &Plain{}
}

// Render formats all patterns as plain text.
func (pl *Plain) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := pl.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (pl *Plain) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return pl.renderSummary(v)
	case *pattern.PointTable:
		return pl.renderPointTable(v)
	case *pattern.UpdateTable:
		return pl.renderUpdateTable(v)
	case *pattern.Leaderboard:
		return pl.renderLeaderboard(v)
	case *pattern.Comparison:
		return pl.renderComparison(v)
	default:
		// Sparklines are terminal graphics; nothing useful to print here.
		return ""
	}
}

func (pl *Plain) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	sb.WriteString(s.Label + "\n")
	for _, m := range s.Metrics {
		sb.WriteString("  " + m.Label + ": " + m.Value + "\n")
	}
	return sb.String()
}

func (pl *Plain) renderPointTable(pt *pattern.PointTable) string {
	if len(pt.Points) == 0 {
		return ""
	}
	var sb strings.Builder
	if pt.Label != "" {
		sb.WriteString(pt.Label + "\n")
	}
	for _, row := range pt.Points {
		sb.WriteString(fmt.Sprintf("  %d  %s  %s", row.ID, row.Name, displayOutcome(row.Outcome)))
		if row.State != "" {
			sb.WriteString("  " + row.State)
		}
		if row.Automated {
			sb.WriteString("  [auto]")
		}
		sb.WriteString("\n")
		writeDetails(&sb, row.Details)
	}
	return sb.String()
}

func (pl *Plain) renderUpdateTable(ut *pattern.UpdateTable) string {
	if len(ut.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	if ut.Label != "" {
		sb.WriteString(ut.Label + "\n")
	}
	for _, row := range ut.Rows {
		sb.WriteString("  " + strings.ToUpper(row.Status) + " " + row.Name)
		if row.Outcome != "" {
			sb.WriteString(" -> " + row.Outcome)
		}
		if row.Score > 0 {
			sb.WriteString(fmt.Sprintf(" (score %d)", row.Score))
		}
		sb.WriteString("\n")
		writeDetails(&sb, row.Details)
	}
	return sb.String()
}

func (pl *Plain) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		sb.WriteString(l.Label + "\n")
	}
	for _, item := range l.Items {
		if l.ShowRank {
			sb.WriteString(fmt.Sprintf("  %d. ", item.Rank))
		} else {
			sb.WriteString("  ")
		}
		sb.WriteString(item.Name + "  " + item.Metric)
		if item.Context != "" {
			sb.WriteString("  " + item.Context)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (pl *Plain) renderComparison(c *pattern.Comparison) string {
	if len(c.Changes) == 0 {
		return ""
	}
	var sb strings.Builder
	if c.Label != "" {
		sb.WriteString(c.Label + "\n")
	}
	for _, item := range c.Changes {
		sb.WriteString("  " + item.Label + ": " + item.Before + " -> " + item.After + "\n")
	}
	return sb.String()
}

// writeDetails indents a detail block, truncated to three lines.
func writeDetails(sb *strings.Builder, details string) {
	if details == "" {
		return
	}
	lines := strings.Split(details, "\n")
	max := 3
	if len(lines) < max {
		max = len(lines)
	}
	for _, line := range lines[:max] {
		sb.WriteString("    " + line + "\n")
	}
	if len(lines) > 3 {
		sb.WriteString(fmt.Sprintf("    ... (%d more lines)\n", len(lines)-3))
	}
}
