package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/dkoosis/tpsync/pkg/apply"
	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/junitxml"
	"github.com/dkoosis/tpsync/pkg/plan"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Match XML test results against test points and update their outcomes",
		ArgsUsage: "<plan-id> [suite-id]",
		Description: `sync parses JUnit/pytest XML files, matches each test against the
plan's test case names with fuzzy matching, and updates the matched
points. Unmatched tests are reported, never treated as failures.
Use --dry-run first to review the planned updates.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "results",
				Aliases:  []string{"r"},
				Usage:    "result file path or glob (** supported), repeatable",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "min-score",
				Usage: "minimum fuzzy match score, 1-100",
			},
			&cli.StringSliceFlag{
				Name:  "filter-outcome",
				Usage: "only update points whose current outcome matches, repeatable",
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
			&cli.BoolFlag{
				Name:    "detailed",
				Aliases: []string{"d"},
				Usage:   "include match score breakdowns in the report",
			},
		},
		Action: runSync,
	}
}

func runSync(c *cli.Context) error {
	cfg := resolveConfig(c)
	client, err := serviceClient(cfg)
	if err != nil {
		return err
	}
	planID, suiteID, err := planSuiteArgs(c)
	if err != nil {
		return err
	}
	minScore := cfg.MinScore
	if c.IsSet("min-score") {
		minScore = c.Int("min-score")
		if minScore < 1 || minScore > 100 {
			return fmt.Errorf("invalid --min-score %d (want 1-100)", minScore)
		}
	}

	// Parse results before touching the service so a bad glob or malformed
	// file fails fast.
	files, err := junitxml.ParseGlobs(c.StringSlice("results"))
	if err != nil {
		return err
	}
	outcomes := junitxml.Outcomes(files)
	for _, f := range files {
		log.WithFields(log.Fields{"file": f.Path, "tests": len(f.Outcomes)}).Debug("parsed results")
	}
	stats := junitxml.ComputeStats(outcomes)
	log.WithFields(log.Fields{
		"total":   stats.Total,
		"passed":  stats.Passed,
		"failed":  stats.Failed,
		"errors":  stats.Errors,
		"skipped": stats.Skipped,
	}).Debug("parsed outcomes")

	var filter []azdo.Outcome
	for _, s := range c.StringSlice("filter-outcome") {
		o, err := azdo.ParseOutcome(s)
		if err != nil {
			return err
		}
		filter = append(filter, o)
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

	p := plan.Build(outcomes, points, plan.Options{
		MinScore:      minScore,
		OutcomeFilter: filter,
		Comment:       comment,
	})
	return execAndReport(c, cfg, client, p, runID, c.Bool("detailed"))
}
