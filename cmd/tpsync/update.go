package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/dkoosis/tpsync/pkg/apply"
	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/plan"
)

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Set an outcome on every point matching the filter criteria",
		ArgsUsage: "<plan-id> [suite-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "outcome",
				Usage:    "outcome to set, e.g. Passed, Failed, Blocked",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "filter-outcome",
				Usage: "only points whose current outcome matches",
			},
			&cli.StringFlag{
				Name:  "filter-state",
				Usage: "only points in this state, e.g. Ready",
			},
			&cli.StringFlag{
				Name:  "filter-automated",
				Usage: "only automated (true) or manual (false) test cases",
			},
			&cli.StringFlag{
				Name:  "filter-name",
				Usage: "only test case names containing this substring",
			},
			&cli.StringFlag{
				Name:  "comment",
				Usage: "comment template attached to each update",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "report what would be updated without writing",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "parallel update workers",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "disable the live progress display",
			},
		},
		Action: runUpdate,
	}
}

func runUpdate(c *cli.Context) error {
	cfg := resolveConfig(c)
	client, err := serviceClient(cfg)
	if err != nil {
		return err
	}
	planID, suiteID, err := planSuiteArgs(c)
	if err != nil {
		return err
	}

	target, err := azdo.ParseOutcome(c.String("outcome"))
	if err != nil {
		return err
	}
	criteria, err := updateCriteria(c)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	comment, err := apply.NewCommentFunc(c.String("comment"), runID, time.Now())
	if err != nil {
		return err
	}

	points, err := fetchPoints(c.Context, client, planID, suiteID)
	if err != nil {
		return err
	}

	p := plan.FromCriteria(points, target, criteria, comment)
	return execAndReport(c, cfg, client, p, runID, false)
}

func updateCriteria(c *cli.Context) (plan.Criteria, error) {
	criteria := plan.Criteria{
		State:        c.String("filter-state"),
		NameContains: c.String("filter-name"),
	}
	if s := c.String("filter-outcome"); s != "" {
		o, err := azdo.ParseOutcome(s)
		if err != nil {
			return criteria, err
		}
		criteria.Outcome = o
	}
	if s := c.String("filter-automated"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return criteria, fmt.Errorf("invalid --filter-automated %q (want true or false)", s)
		}
		criteria.Automated = &v
	}
	return criteria, nil
}

// fetchPoints returns the points of one suite, or every point in the plan
// flattened in suite order.
func fetchPoints(ctx context.Context, client *azdo.Client, planID, suiteID int) ([]azdo.TestPoint, error) {
	if suiteID > 0 {
		return client.ListPoints(ctx, planID, suiteID)
	}
	suites, err := client.ListPlanPoints(ctx, planID)
	if err != nil {
		return nil, err
	}
	var points []azdo.TestPoint
	for _, sp := range suites {
		points = append(points, sp.Points...)
	}
	return points, nil
}
