// Package main implements the tpsync CLI: it lists, updates, and
// synchronizes Azure DevOps test points from automated test results.
package main

import (
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/dkoosis/tpsync/internal/config"
	"github.com/dkoosis/tpsync/internal/version"
	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/render"
)

func main() {
	os.Exit(run(os.Args))
}

// run executes the application and returns the exit code. Kept separate
// from main so tests can invoke the CLI without os.Exit.
func run(args []string) int {
	if err := newApp().Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "tpsync",
		Usage:   "Synchronize automated test results with Azure DevOps test points",
		Version: version.String(),
		Description: `tpsync bridges CI test output and Azure DevOps Test Plans. It parses
JUnit/pytest XML result files, matches test names against test case titles
with fuzzy string matching, and updates the matched test points' outcomes.

Credentials come from the environment (AZURE_DEVOPS_ORG, AZURE_DEVOPS_PROJECT,
AZURE_DEVOPS_PAT), an optional .tpsync.yaml, or flags.

Workflow:
  1. Run 'tpsync list <plan-id>' to inspect suites and points
  2. Run 'tpsync sync <plan-id> --results "reports/**/*.xml" --dry-run'
  3. Drop --dry-run once the planned updates look right`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "org",
				Usage: "Azure DevOps organization URL, e.g. https://dev.azure.com/acme",
			},
			&cli.StringFlag{
				Name:  "project",
				Usage: "Azure DevOps project name",
			},
			&cli.StringFlag{
				Name:  "pat",
				Usage: "personal access token (prefer the environment variable)",
			},
			&cli.StringFlag{
				Name:  "api-version",
				Usage: "REST API version to request",
			},
			&cli.StringFlag{
				Name:  "theme",
				Usage: "terminal theme: default, slate, mono",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			log.SetOutput(os.Stderr)
			if c.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			listCommand(),
			updateCommand(),
			syncCommand(),
			configCommand(),
		},
	}
}

// resolveConfig layers flag values over the file/env configuration.
func resolveConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	cfg.Apply(config.Overrides{
		OrgURL:     c.String("org"),
		Project:    c.String("project"),
		PAT:        c.String("pat"),
		APIVersion: c.String("api-version"),
		Theme:      c.String("theme"),
		NoColor:    c.Bool("no-color"),
		NoColorSet: c.IsSet("no-color"),
		Verbose:    c.Bool("verbose"),
		VerboseSet: c.IsSet("verbose"),
	})
	return cfg
}

// serviceClient validates credentials and builds the REST client.
func serviceClient(cfg *config.Config) (*azdo.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return azdo.NewClient(cfg.OrgURL, cfg.Project, cfg.PAT, azdo.WithAPIVersion(cfg.APIVersion)), nil
}

// planSuiteArgs parses the positional <plan-id> [suite-id] arguments.
func planSuiteArgs(c *cli.Context) (planID, suiteID int, err error) {
	if c.Args().Len() < 1 {
		return 0, 0, fmt.Errorf("plan id argument is required")
	}
	planID, err = strconv.Atoi(c.Args().Get(0))
	if err != nil || planID <= 0 {
		return 0, 0, fmt.Errorf("invalid plan id %q", c.Args().Get(0))
	}
	if c.Args().Len() > 1 {
		suiteID, err = strconv.Atoi(c.Args().Get(1))
		if err != nil || suiteID <= 0 {
			return 0, 0, fmt.Errorf("invalid suite id %q", c.Args().Get(1))
		}
	}
	if c.Args().Len() > 2 {
		return 0, 0, fmt.Errorf("unexpected argument %q", c.Args().Get(2))
	}
	return planID, suiteID, nil
}

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// consoleRenderer picks the console renderer: styled for a TTY, monochrome
// styling when color is off, plain text when piped.
func consoleRenderer(cfg *config.Config) render.Renderer {
	if !isTTY(os.Stdout) {
		return render.NewPlain()
	}
	theme := render.ThemeByName(cfg.Theme)
	if cfg.NoColor {
		theme = render.MonoTheme()
	}
	return render.NewTerminal(theme, terminalWidth())
}
