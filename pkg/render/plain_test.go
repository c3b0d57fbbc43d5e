package render

import (
	"strings"
	"testing"

	"github.com/dkoosis/tpsync/pkg/pattern"
)

func TestPlain_RenderUpdateTable(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.UpdateTable{
			Label: "Failed Updates",
			Rows: []pattern.UpdateRow{
				{
					Name:    "login works",
					Outcome: "Passed",
					Score:   92,
					Status:  pattern.RowFailed,
					Details: "line1\nline2\nline3\nline4\nline5",
				},
			},
		},
	}
	out := NewPlain().Render(patterns)
	if !strings.Contains(out, "FAILED login works -> Passed (score 92)") {
		t.Errorf("expected row line in output:\n%s", out)
	}
	if !strings.Contains(out, "... (2 more lines)") {
		t.Errorf("expected detail truncation in output:\n%s", out)
	}
	if strings.Contains(out, "line4") {
		t.Errorf("details beyond three lines should be truncated:\n%s", out)
	}
}

func TestPlain_RenderUnmatchedRow(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.UpdateTable{
			Label: "Unmatched Results",
			Rows: []pattern.UpdateRow{
				{Name: "orphan test", Status: pattern.RowUnmatched, Details: "no candidate scored at least 80"},
			},
		},
	}
	out := NewPlain().Render(patterns)
	if !strings.Contains(out, "UNMATCHED orphan test") {
		t.Errorf("expected unmatched row in output:\n%s", out)
	}
	if !strings.Contains(out, "no candidate scored at least 80") {
		t.Errorf("expected reason in output:\n%s", out)
	}
}

func TestPlain_SkipsSparkline(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.Sparkline{Label: "Match scores", Values: []float64{80, 92, 100}},
	}
	out := NewPlain().Render(patterns)
	if out != "" {
		t.Errorf("sparklines should not appear in plain output, got:\n%s", out)
	}
}

func TestPlain_NoANSICodes(t *testing.T) {
	patterns := []pattern.Pattern{
		&pattern.Summary{
			Label:   "SYNCED 3/3 results",
			Kind:    pattern.SummaryKindRun,
			Metrics: []pattern.SummaryItem{{Label: "Updated", Value: "3", Kind: "success"}},
		},
	}
	out := NewPlain().Render(patterns)
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output must not contain escape sequences:\n%q", out)
	}
}
