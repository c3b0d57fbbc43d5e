// Package apply executes an update plan against the test point service.
// Per-item failures are recorded and never stop the run; only systemic
// failures (the service is unreachable, credentials rejected) abort the
// remaining batch. Already-applied updates are never rolled back.
package apply

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/plan"
)

// Service is the single-point-update surface the orchestrator needs.
// *azdo.Client satisfies it.
type Service interface {
	UpdatePoint(ctx context.Context, planID, suiteID, pointID int, outcome azdo.Outcome, comment string) error
}

// UpdateResult records the fate of one plan item. Exactly one is written
// per item, in plan order.
type UpdateResult struct {
	Item      plan.Item
	Simulated bool // dry-run, no network write
	Skipped   bool // run aborted before this item was attempted
	Err       error
}

// Success reports whether the item was written (or simulated) cleanly.
func (r UpdateResult) Success() bool { return !r.Skipped && r.Err == nil }

// Summary aggregates one orchestrated run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Aborted    bool
	Results    []UpdateResult
	Attempted  int
	Updated    int
	Failed     int
	Unmatched  int
	ByOutcome  map[azdo.Outcome]int
}

// Err aggregates every per-item failure, or nil when none failed.
func (s *Summary) Err() error {
	var result *multierror.Error
	for _, r := range s.Results {
		if r.Err != nil {
			result = multierror.Append(result, fmt.Errorf("point %d: %w", r.Item.PointID, r.Err))
		}
	}
	return result.ErrorOrNil()
}

// Options configure a run.
type Options struct {
	// DryRun records simulated successes without any network call.
	DryRun bool
	// Workers bounds parallel writes; values below two run serially.
	Workers int
	// RunID is assigned a fresh UUID when empty.
	RunID string
	// OnResult, when set, observes each result as its slot is written. With
	// parallel workers it may be called from multiple goroutines.
	OnResult func(UpdateResult)
}

// Run applies every item of the plan and returns the run summary. The
// returned error is non-nil only for a systemic abort; per-item failures
// live in the summary. The summary is always returned, including on abort,
// so callers can report what was applied before the failure.
func Run(ctx context.Context, svc Service, p *plan.Plan, opts Options) (*Summary, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	summary := &Summary{
		RunID:     runID,
		StartedAt: time.Now(),
		DryRun:    opts.DryRun,
		Results:   make([]UpdateResult, len(p.Items)),
		Unmatched: p.UnmatchedCount(),
		ByOutcome: make(map[azdo.Outcome]int),
	}

	logger := log.WithFields(log.Fields{
		"run_id":  runID,
		"items":   len(p.Items),
		"dry_run": opts.DryRun,
		"workers": opts.Workers,
	})
	logger.Debug("starting update run")

	var runErr error
	if opts.Workers > 1 && !opts.DryRun && len(p.Items) > 1 {
		runErr = runParallel(ctx, svc, p.Items, summary.Results, opts)
	} else {
		runErr = runSerial(ctx, svc, p.Items, summary.Results, opts)
	}

	summary.FinishedAt = time.Now()
	summary.tally()

	if runErr != nil {
		summary.Aborted = true
		logger.WithFields(log.Fields{"error": runErr}).Error("update run aborted")
		return summary, runErr
	}
	logger.WithFields(log.Fields{
		"updated":   summary.Updated,
		"failed":    summary.Failed,
		"unmatched": summary.Unmatched,
	}).Debug("update run finished")
	return summary, nil
}

func runSerial(ctx context.Context, svc Service, items []plan.Item, results []UpdateResult, opts Options) error {
	for i, item := range items {
		res := applyOne(ctx, svc, item, opts.DryRun)
		results[i] = res
		if opts.OnResult != nil {
			opts.OnResult(res)
		}
		if res.Err != nil && azdo.IsSystemic(res.Err) {
			markSkipped(items, results, i+1, opts)
			return fmt.Errorf("aborting run: %w", res.Err)
		}
	}
	return nil
}

// runParallel fans items across a bounded worker group. Each worker owns
// exactly one result slot, so no write is shared. A systemic failure
// cancels the group context; workers that have not started their service
// call mark their slot skipped instead.
func runParallel(ctx context.Context, svc Service, items []plan.Item, results []UpdateResult, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = UpdateResult{Item: item, Skipped: true}
				if opts.OnResult != nil {
					opts.OnResult(results[i])
				}
				return nil
			default:
			}

			res := applyOne(gctx, svc, item, false)
			results[i] = res
			if opts.OnResult != nil {
				opts.OnResult(res)
			}
			if res.Err != nil && azdo.IsSystemic(res.Err) {
				return fmt.Errorf("aborting run: %w", res.Err)
			}
			return nil
		})
	}
	return g.Wait()
}

func markSkipped(items []plan.Item, results []UpdateResult, from int, opts Options) {
	for i := from; i < len(items); i++ {
		results[i] = UpdateResult{Item: items[i], Skipped: true}
		if opts.OnResult != nil {
			opts.OnResult(results[i])
		}
	}
}

func applyOne(ctx context.Context, svc Service, item plan.Item, dryRun bool) UpdateResult {
	if dryRun {
		return UpdateResult{Item: item, Simulated: true}
	}

	err := svc.UpdatePoint(ctx, item.PlanID, item.SuiteID, item.PointID, item.TargetOutcome, item.Comment)
	if err != nil {
		log.WithFields(log.Fields{
			"point_id": item.PointID,
			"target":   item.TargetOutcome,
			"error":    err,
		}).Debug("point update failed")
	}
	return UpdateResult{Item: item, Err: err}
}

func (s *Summary) tally() {
	for _, r := range s.Results {
		if r.Skipped {
			continue
		}
		s.Attempted++
		switch {
		case r.Err != nil:
			s.Failed++
		default:
			s.Updated++
			s.ByOutcome[r.Item.TargetOutcome]++
		}
	}
}
