package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tpsync/pkg/pattern"
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		s := t.renderOne(p)
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.PointTable:
		return t.renderPointTable(v)
	case *pattern.UpdateTable:
		return t.renderUpdateTable(v)
	case *pattern.Leaderboard:
		return t.renderLeaderboard(v)
	case *pattern.Sparkline:
		return t.renderSparkline(v)
	case *pattern.Comparison:
		return t.renderComparison(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		sb.WriteString("  ")
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderPointTable(pt *pattern.PointTable) string {
	if len(pt.Points) == 0 {
		return ""
	}
	var sb strings.Builder
	if pt.Label != "" {
		sb.WriteString(t.theme.Bold.Render(pt.Label))
		sb.WriteString("\n")
	}

	nameCap := t.width / 2
	if nameCap < 24 {
		nameCap = 24
	}
	maxID, maxName, maxOutcome := 0, 0, 0
	for _, row := range pt.Points {
		if w := len(strconv.Itoa(row.ID)); w > maxID {
			maxID = w
		}
		if w := runewidth.StringWidth(row.Name); w > maxName {
			maxName = w
		}
		if w := runewidth.StringWidth(displayOutcome(row.Outcome)); w > maxOutcome {
			maxOutcome = w
		}
	}
	if maxName > nameCap {
		maxName = nameCap
	}

	for _, row := range pt.Points {
		sb.WriteString("  ")
		icon, style := t.outcomeIconStyle(row.Outcome)
		sb.WriteString(style.Render(icon + " "))

		sb.WriteString(t.theme.Muted.Render(padLeft(strconv.Itoa(row.ID), maxID)))
		sb.WriteString("  ")
		sb.WriteString(padRight(runewidth.Truncate(row.Name, maxName, "..."), maxName))
		sb.WriteString("  ")
		sb.WriteString(style.Render(padRight(displayOutcome(row.Outcome), maxOutcome)))

		if row.State != "" {
			sb.WriteString(t.theme.Muted.Render("  " + row.State))
		}
		if row.AssignedTo != "" {
			sb.WriteString(t.theme.Muted.Render("  " + row.AssignedTo))
		}
		if row.Automated {
			sb.WriteString(t.theme.Primary.Render("  [auto]"))
		}

		if row.Details != "" {
			for _, line := range strings.Split(row.Details, "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderUpdateTable(ut *pattern.UpdateTable) string {
	if len(ut.Rows) == 0 {
		return ""
	}
	var sb strings.Builder
	if ut.Label != "" {
		sb.WriteString(t.theme.Bold.Render(ut.Label))
		sb.WriteString("\n")
	}

	maxName := 0
	for _, row := range ut.Rows {
		if w := runewidth.StringWidth(row.Name); w > maxName {
			maxName = w
		}
	}
	nameCap := t.width / 2
	if nameCap < 24 {
		nameCap = 24
	}
	if maxName > nameCap {
		maxName = nameCap
	}

	for _, row := range ut.Rows {
		sb.WriteString("  ")
		icon, style := t.rowIconStyle(row.Status)
		sb.WriteString(style.Render(icon + " "))
		sb.WriteString(padRight(runewidth.Truncate(row.Name, maxName, "..."), maxName))

		if row.Outcome != "" {
			sb.WriteString("  ")
			sb.WriteString(style.Render(row.Outcome))
		}
		if row.Score > 0 {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("  score %d", row.Score)))
		}
		if row.PointID > 0 {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("  #%d", row.PointID)))
		}

		if row.Details != "" {
			for _, line := range strings.Split(row.Details, "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderLeaderboard(l *pattern.Leaderboard) string {
	if len(l.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if l.Label != "" {
		header := l.Label
		if l.TotalCount > len(l.Items) {
			header += fmt.Sprintf(" (top %d of %d)", len(l.Items), l.TotalCount)
		}
		sb.WriteString(t.theme.Bold.Render(header))
		sb.WriteString("\n")
	}

	maxName, maxMetric := 0, 0
	for _, item := range l.Items {
		if w := runewidth.StringWidth(item.Name); w > maxName {
			maxName = w
		}
		if w := runewidth.StringWidth(item.Metric); w > maxMetric {
			maxMetric = w
		}
	}
	if maxName > 50 {
		maxName = 50
	}

	for _, item := range l.Items {
		sb.WriteString("  ")
		if l.ShowRank {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", item.Rank)))
		}
		sb.WriteString(t.theme.Primary.Render(padRight(runewidth.Truncate(item.Name, maxName, "..."), maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.theme.Warning.Render(padLeft(item.Metric, maxMetric)))
		if item.Context != "" {
			sb.WriteString(t.theme.Muted.Render("  " + item.Context))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderSparkline(s *pattern.Sparkline) string {
	if len(s.Values) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Primary.Render(s.Label + ": "))
	}

	minVal, maxVal := s.Min, s.Max
	if minVal == 0 && maxVal == 0 {
		minVal, maxVal = s.Values[0], s.Values[0]
		for _, v := range s.Values {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	valueRange := maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var spark strings.Builder
	for _, v := range s.Values {
		idx := int((v - minVal) / valueRange * 7)
		if idx < 0 {
			idx = 0
		}
		if idx > 7 {
			idx = 7
		}
		spark.WriteRune(blocks[idx])
	}
	sb.WriteString(t.theme.Success.Render(spark.String()))

	latest := s.Values[len(s.Values)-1]
	sb.WriteString(t.theme.Muted.Render(fmt.Sprintf(" %.0f%s", latest, s.Unit)))
	sb.WriteString("\n")
	return sb.String()
}

func (t *Terminal) renderComparison(c *pattern.Comparison) string {
	if len(c.Changes) == 0 {
		return ""
	}
	var sb strings.Builder
	if c.Label != "" {
		sb.WriteString(t.theme.Bold.Render(c.Label))
		sb.WriteString("\n")
	}
	for _, item := range c.Changes {
		sb.WriteString("  ")
		sb.WriteString(item.Label + ": ")
		sb.WriteString(t.theme.Muted.Render(item.Before + " → " + item.After))
		sb.WriteString(" ")

		var arrow string
		var style lipgloss.Style
		switch {
		case item.Change > 0:
			arrow = "↑"
			style = t.theme.Success
		case item.Change < 0:
			arrow = "↓"
			style = t.theme.Warning
		default:
			arrow = "="
			style = t.theme.Muted
		}
		abs := item.Change
		if abs < 0 {
			abs = -abs
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s %.0f%s", arrow, abs, item.Unit)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) outcomeIconStyle(outcome string) (string, lipgloss.Style) {
	switch strings.ToLower(outcome) {
	case "passed":
		return t.theme.Icons.Pass, t.theme.Success
	case "failed", "timeout", "aborted":
		return t.theme.Icons.Fail, t.theme.Error
	case "blocked":
		return t.theme.Icons.Blocked, t.theme.Warning
	case "inconclusive", "notapplicable", "not applicable":
		return t.theme.Icons.Warn, t.theme.Muted
	default:
		return t.theme.Icons.Info, t.theme.Muted
	}
}

func (t *Terminal) rowIconStyle(status string) (string, lipgloss.Style) {
	switch status {
	case pattern.RowUpdated:
		return t.theme.Icons.Pass, t.theme.Success
	case pattern.RowSimulated:
		return t.theme.Icons.Info, t.theme.Primary
	case pattern.RowFailed:
		return t.theme.Icons.Fail, t.theme.Error
	case pattern.RowUnmatched:
		return t.theme.Icons.Warn, t.theme.Warning
	case pattern.RowSkipped:
		return t.theme.Icons.Blocked, t.theme.Muted
	default:
		return t.theme.Icons.Bullet, t.theme.Muted
	}
}

func displayOutcome(outcome string) string {
	if outcome == "" {
		return "never run"
	}
	return outcome
}

func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
