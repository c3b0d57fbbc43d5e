package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/dkoosis/tpsync/internal/config"
	"github.com/dkoosis/tpsync/pkg/apply"
	"github.com/dkoosis/tpsync/pkg/mapper"
	"github.com/dkoosis/tpsync/pkg/pattern"
	"github.com/dkoosis/tpsync/pkg/plan"
	"github.com/dkoosis/tpsync/pkg/progress"
)

// execAndReport runs the plan, renders the summary, and turns failures into
// a non-zero exit. The summary is rendered even when the run aborts so the
// user sees what was applied before the failure.
func execAndReport(c *cli.Context, cfg *config.Config, svc apply.Service, p *plan.Plan, runID string, detailed bool) error {
	opts := apply.Options{
		DryRun:  c.Bool("dry-run"),
		Workers: workerCount(c, cfg),
		RunID:   runID,
	}
	summary, runErr := executePlan(c.Context, svc, p, opts, !c.Bool("no-progress"))

	fmt.Fprint(c.App.Writer, consoleRenderer(cfg).Render(mapper.FromRunSummary(summary, p, detailed)))

	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d updates failed", summary.Failed, summary.Attempted)
	}
	return nil
}

func workerCount(c *cli.Context, cfg *config.Config) int {
	if c.IsSet("workers") {
		return c.Int("workers")
	}
	return cfg.Workers
}

// executePlan runs the orchestrator, with a live progress display when the
// run is interactive and worth watching. Dry runs and single updates go
// straight through.
func executePlan(ctx context.Context, svc apply.Service, p *plan.Plan, opts apply.Options, allowProgress bool) (*apply.Summary, error) {
	if !allowProgress || opts.DryRun || len(p.Items) < 2 || !isTTY(os.Stdout) {
		opts.OnResult = logResult
		return apply.Run(ctx, svc, p, opts)
	}

	// The channel is sized to the plan so workers never block on the
	// display, even if it exits early.
	events := make(chan progress.Event, len(p.Items))
	opts.OnResult = func(r apply.UpdateResult) {
		events <- progressEvent(r)
	}

	var (
		summary *apply.Summary
		runErr  error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		summary, runErr = apply.Run(ctx, svc, p, opts)
		close(events)
	}()
	if err := progress.Run(ctx, len(p.Items), events); err != nil {
		log.WithError(err).Warn("progress display failed; run continues")
	}
	<-done
	return summary, runErr
}

func progressEvent(r apply.UpdateResult) progress.Event {
	e := progress.Event{
		Name:    r.Item.TestCaseName,
		Outcome: string(r.Item.TargetOutcome),
	}
	if e.Name == "" {
		e.Name = r.Item.Source.FullName()
	}
	switch {
	case r.Skipped:
		e.Status = pattern.RowSkipped
	case r.Err != nil:
		e.Status = pattern.RowFailed
		e.Detail = r.Err.Error()
	case r.Simulated:
		e.Status = pattern.RowSimulated
	default:
		e.Status = pattern.RowUpdated
	}
	return e
}

// logResult is the non-interactive fallback: one log line per result.
func logResult(r apply.UpdateResult) {
	entry := log.WithFields(log.Fields{
		"point":   r.Item.PointID,
		"outcome": r.Item.TargetOutcome,
	})
	switch {
	case r.Skipped:
		entry.Debug("skipped")
	case r.Err != nil:
		entry.WithError(r.Err).Warn("update failed")
	case r.Simulated:
		entry.Debug("would update")
	default:
		entry.Info("updated")
	}
}
