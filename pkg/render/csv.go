package render

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/dkoosis/tpsync/pkg/pattern"
)

// CSV renders point or update tables as comma-separated rows for export.
// Summaries and graphics are skipped; a render holds one record shape, so
// point tables take precedence when both kinds are present.
type CSV struct{}

// NewCSV creates a CSV renderer.
func NewCSV() *CSV {
	return &CSV{}
}

// Render formats table patterns as CSV with a header row.
func (c *CSV) Render(patterns []pattern.Pattern) string {
	var pointTables []*pattern.PointTable
	var updateTables []*pattern.UpdateTable
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.PointTable:
			pointTables = append(pointTables, v)
		case *pattern.UpdateTable:
			updateTables = append(updateTables, v)
		}
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if len(pointTables) > 0 {
		_ = w.Write([]string{"suite_id", "point_id", "name", "outcome", "state", "assigned_to", "automated"})
		for _, t := range pointTables {
			for _, row := range t.Points {
				_ = w.Write([]string{
					strconv.Itoa(t.SuiteID),
					strconv.Itoa(row.ID),
					row.Name,
					row.Outcome,
					row.State,
					row.AssignedTo,
					strconv.FormatBool(row.Automated),
				})
			}
		}
		w.Flush()
		return sb.String()
	}

	if len(updateTables) > 0 {
		_ = w.Write([]string{"point_id", "name", "outcome", "score", "status", "details"})
		for _, t := range updateTables {
			for _, row := range t.Rows {
				_ = w.Write([]string{
					strconv.Itoa(row.PointID),
					row.Name,
					row.Outcome,
					strconv.Itoa(row.Score),
					row.Status,
					row.Details,
				})
			}
		}
		w.Flush()
	}
	return sb.String()
}
