package apply

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	log "github.com/sirupsen/logrus"

	"github.com/dkoosis/tpsync/pkg/plan"
)

// CommentData is what a comment template can reference. Items built from
// criteria (no XML source) leave the result fields empty.
type CommentData struct {
	TestName   string // raw XML test name
	CaseName   string // the service's test case name
	Status     string
	Duration   string
	Score      int
	RunID      string
	ExecutedAt string // suite timestamp when present, else run start
}

// NewCommentFunc turns comment text into a per-item renderer. The text is a
// template with the sprig function set available; plain text with no
// template actions passes through unchanged. A template that fails to parse
// is an error; one that fails at render time falls back to the literal text
// with a logged warning, so a bad comment never loses an update.
func NewCommentFunc(text, runID string, started time.Time) (plan.CommentFunc, error) {
	if text == "" {
		return nil, nil
	}

	tmpl, err := template.New("comment").
		Option("missingkey=zero").
		Funcs(sprig.TxtFuncMap()).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing comment template: %w", err)
	}

	return func(item plan.Item) string {
		executedAt := item.Source.ExecutedAt
		if executedAt.IsZero() {
			executedAt = started
		}
		data := CommentData{
			TestName:   item.Source.Name,
			CaseName:   item.TestCaseName,
			Status:     string(item.Source.Status),
			Duration:   item.Source.Duration.String(),
			Score:      item.MatchScore,
			RunID:      runID,
			ExecutedAt: executedAt.Format(time.RFC3339),
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			log.WithFields(log.Fields{
				"point_id": item.PointID,
				"error":    err,
			}).Warn("comment template failed, using literal text")
			return text
		}
		return strings.TrimSpace(buf.String())
	}, nil
}
