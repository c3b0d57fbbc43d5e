package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/dkoosis/tpsync/internal/config"
	"github.com/dkoosis/tpsync/pkg/pattern"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:   "config",
		Usage:  "Show the resolved configuration and where each value came from",
		Action: runConfig,
	}
}

func runConfig(c *cli.Context) error {
	cfg := resolveConfig(c)
	patterns := []pattern.Pattern{configSummary(cfg)}
	fmt.Fprint(c.App.Writer, consoleRenderer(cfg).Render(patterns))
	return nil
}

func configSummary(cfg *config.Config) *pattern.Summary {
	label := "Configuration"
	if cfg.Path != "" {
		label = "Configuration (" + cfg.Path + ")"
	}
	return &pattern.Summary{
		Label: label,
		Kind:  pattern.SummaryKindConfig,
		Metrics: []pattern.SummaryItem{
			configItem("Organization", cfg.OrgURL, cfg.Source("org_url")),
			configItem("Project", cfg.Project, cfg.Source("project")),
			configItem("PAT", config.PATPreview(cfg.PAT), cfg.Source("pat")),
			configItem("API version", cfg.APIVersion, cfg.Source("api_version")),
			configItem("Min score", strconv.Itoa(cfg.MinScore), cfg.Source("min_score")),
			configItem("Workers", strconv.Itoa(cfg.Workers), cfg.Source("workers")),
			configItem("Theme", cfg.Theme, cfg.Source("theme")),
			configItem("No color", strconv.FormatBool(cfg.NoColor), cfg.Source("no_color")),
		},
	}
}

func configItem(label, value string, src config.Source) pattern.SummaryItem {
	kind := "info"
	if value == "" || value == "not set" {
		kind, value = "warning", "not set"
	}
	return pattern.SummaryItem{
		Label: label,
		Value: fmt.Sprintf("%s (%s)", value, src),
		Kind:  kind,
	}
}
