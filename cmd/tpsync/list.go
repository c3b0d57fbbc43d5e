package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/mapper"
	"github.com/dkoosis/tpsync/pkg/render"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List test points for a plan or a single suite",
		ArgsUsage: "<plan-id> [suite-id]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "detailed",
				Aliases: []string{"d"},
				Usage:   "fetch work item metadata for each test case",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format: console, json, csv",
				Value:   "console",
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "write json/csv output to stdout instead of a file",
			},
		},
		Action: runList,
	}
}

func runList(c *cli.Context) error {
	cfg := resolveConfig(c)
	client, err := serviceClient(cfg)
	if err != nil {
		return err
	}
	planID, suiteID, err := planSuiteArgs(c)
	if err != nil {
		return err
	}
	format := c.String("output")
	switch format {
	case "console", "json", "csv":
	default:
		return fmt.Errorf("unknown output format %q (valid: console, json, csv)", format)
	}

	ctx := c.Context
	suites, err := fetchSuitePoints(ctx, client, planID, suiteID)
	if err != nil {
		return err
	}

	var details map[int]azdo.TestCaseDetails
	if c.Bool("detailed") {
		details = fetchDetails(ctx, client, suites)
	}
	patterns := mapper.FromSuitePoints(suites, details)

	switch format {
	case "json":
		return writeExport(c, render.NewJSON().Render(patterns), "json", planID)
	case "csv":
		return writeExport(c, render.NewCSV().Render(patterns), "csv", planID)
	}
	fmt.Fprint(c.App.Writer, consoleRenderer(cfg).Render(patterns))
	return nil
}

// fetchSuitePoints lists every suite of the plan, or just the named suite.
// The points endpoint does not return suite names, so a single-suite listing
// carries only the ID.
func fetchSuitePoints(ctx context.Context, client *azdo.Client, planID, suiteID int) ([]azdo.SuitePoints, error) {
	if suiteID <= 0 {
		return client.ListPlanPoints(ctx, planID)
	}
	points, err := client.ListPoints(ctx, planID, suiteID)
	if err != nil {
		return nil, err
	}
	return []azdo.SuitePoints{{
		Suite:  azdo.TestSuite{ID: suiteID, PlanID: planID},
		Points: points,
	}}, nil
}

// fetchDetails loads work item metadata for every distinct test case. A
// point whose work item cannot be fetched is listed without extras rather
// than failing the whole listing.
func fetchDetails(ctx context.Context, client *azdo.Client, suites []azdo.SuitePoints) map[int]azdo.TestCaseDetails {
	details := make(map[int]azdo.TestCaseDetails)
	for _, sp := range suites {
		for _, p := range sp.Points {
			if p.TestCaseID == 0 {
				continue
			}
			if _, ok := details[p.TestCaseID]; ok {
				continue
			}
			d, err := client.GetTestCaseDetails(ctx, p.TestCaseID)
			if err != nil {
				log.WithError(err).Warnf("work item %d: details unavailable", p.TestCaseID)
				continue
			}
			details[p.TestCaseID] = *d
		}
	}
	return details
}

func exportFileName(planID int, format string, now time.Time) string {
	return fmt.Sprintf("test_points_plan_%d_%s.%s", planID, now.Format("20060102_150405"), format)
}

func writeExport(c *cli.Context, content, format string, planID int) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if c.Bool("stdout") {
		fmt.Fprint(c.App.Writer, content)
		return nil
	}
	name := exportFileName(planID, format, time.Now())
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	fmt.Fprintf(c.App.Writer, "Results written to %s\n", name)
	return nil
}
