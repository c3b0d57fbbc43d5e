package main

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dkoosis/tpsync/internal/config"
	"github.com/dkoosis/tpsync/pkg/apply"
	"github.com/dkoosis/tpsync/pkg/azdo"
	"github.com/dkoosis/tpsync/pkg/junitxml"
	"github.com/dkoosis/tpsync/pkg/pattern"
	"github.com/dkoosis/tpsync/pkg/plan"
)

// chtemp isolates a test from real config files in the working directory
// and the user config dir.
func chtemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
	t.Setenv("XDG_CONFIG_HOME", dir)
}

func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvPAT, config.EnvOrg, config.EnvProject,
		config.EnvMinScore, config.EnvWorkers, config.EnvTheme, config.EnvAPIVersion,
	} {
		t.Setenv(key, "")
	}
}

func TestNewApp_HasCommands(t *testing.T) {
	app := newApp()
	want := []string{"list", "update", "sync", "config"}
	for _, name := range want {
		if app.Command(name) == nil {
			t.Errorf("app is missing the %q command", name)
		}
	}
}

func parsePlanSuite(t *testing.T, args ...string) (int, int, error) {
	t.Helper()
	var (
		planID, suiteID int
		parseErr        error
	)
	app := &cli.App{Commands: []*cli.Command{{
		Name: "probe",
		Action: func(c *cli.Context) error {
			planID, suiteID, parseErr = planSuiteArgs(c)
			return nil
		},
	}}}
	if err := app.Run(append([]string{"tpsync", "probe"}, args...)); err != nil {
		t.Fatalf("app.Run: %v", err)
	}
	return planID, suiteID, parseErr
}

func TestPlanSuiteArgs(t *testing.T) {
	planID, suiteID, err := parsePlanSuite(t, "12")
	if err != nil || planID != 12 || suiteID != 0 {
		t.Errorf("got (%d, %d, %v), want (12, 0, nil)", planID, suiteID, err)
	}

	planID, suiteID, err = parsePlanSuite(t, "12", "34")
	if err != nil || planID != 12 || suiteID != 34 {
		t.Errorf("got (%d, %d, %v), want (12, 34, nil)", planID, suiteID, err)
	}

	for _, args := range [][]string{
		{},
		{"abc"},
		{"0"},
		{"12", "abc"},
		{"12", "34", "56"},
	} {
		if _, _, err := parsePlanSuite(t, args...); err == nil {
			t.Errorf("args %v: want error, got nil", args)
		}
	}
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 4, 5, 0, time.UTC)
	got := exportFileName(12, "json", now)
	want := "test_points_plan_12_20240301_100405.json"
	if got != want {
		t.Errorf("exportFileName = %q, want %q", got, want)
	}
}

func TestProgressEvent_StatusMapping(t *testing.T) {
	item := plan.Item{
		PointID:       101,
		TestCaseName:  "login works",
		TargetOutcome: azdo.OutcomePassed,
	}
	cases := []struct {
		name   string
		result apply.UpdateResult
		status string
		detail string
	}{
		{"updated", apply.UpdateResult{Item: item}, pattern.RowUpdated, ""},
		{"simulated", apply.UpdateResult{Item: item, Simulated: true}, pattern.RowSimulated, ""},
		{"failed", apply.UpdateResult{Item: item, Err: errors.New("409 conflict")}, pattern.RowFailed, "409 conflict"},
		{"skipped", apply.UpdateResult{Item: item, Skipped: true}, pattern.RowSkipped, ""},
	}
	for _, tc := range cases {
		e := progressEvent(tc.result)
		if e.Status != tc.status {
			t.Errorf("%s: status = %q, want %q", tc.name, e.Status, tc.status)
		}
		if e.Detail != tc.detail {
			t.Errorf("%s: detail = %q, want %q", tc.name, e.Detail, tc.detail)
		}
		if e.Name != "login works" || e.Outcome != "Passed" {
			t.Errorf("%s: name/outcome = %q/%q", tc.name, e.Name, e.Outcome)
		}
	}
}

func TestProgressEvent_FallsBackToSourceName(t *testing.T) {
	r := apply.UpdateResult{Item: plan.Item{
		Source:        junitxml.TestOutcome{ClassName: "tests.test_auth", Name: "test_login"},
		TargetOutcome: azdo.OutcomeFailed,
	}}
	if got := progressEvent(r).Name; got != "tests.test_auth.test_login" {
		t.Errorf("name = %q, want the full source name", got)
	}
}

func TestRun_ListWithoutCredentialsFails(t *testing.T) {
	chtemp(t)
	clearServiceEnv(t)
	if got := run([]string{"tpsync", "list", "7"}); got != 1 {
		t.Errorf("run() = %d, want 1 when credentials are missing", got)
	}
}

func TestRun_SyncRejectsBadResultsGlob(t *testing.T) {
	chtemp(t)
	clearServiceEnv(t)
	t.Setenv(config.EnvOrg, "https://dev.azure.com/acme")
	t.Setenv(config.EnvProject, "Web")
	t.Setenv(config.EnvPAT, "token")

	// The glob matches nothing, so the command must fail before any
	// service call.
	if got := run([]string{"tpsync", "sync", "--results", "missing/*.xml", "7"}); got != 1 {
		t.Errorf("run() = %d, want 1 for an empty results glob", got)
	}
}

func TestRun_UpdateRequiresOutcome(t *testing.T) {
	chtemp(t)
	clearServiceEnv(t)
	if got := run([]string{"tpsync", "update", "7"}); got != 1 {
		t.Errorf("run() = %d, want 1 when --outcome is missing", got)
	}
}

func TestConfigSummary_MarksUnsetValues(t *testing.T) {
	chtemp(t)
	clearServiceEnv(t)
	cfg := config.Load()
	s := configSummary(cfg)

	byLabel := make(map[string]pattern.SummaryItem)
	for _, m := range s.Metrics {
		byLabel[m.Label] = m
	}
	if got := byLabel["Organization"]; got.Value != "not set (default)" || got.Kind != "warning" {
		t.Errorf("Organization = %+v, want not set (default) / warning", got)
	}
	if got := byLabel["PAT"]; got.Value != "not set (default)" || got.Kind != "warning" {
		t.Errorf("PAT = %+v, want not set (default) / warning", got)
	}
	if got := byLabel["Min score"]; got.Value != "80 (default)" || got.Kind != "info" {
		t.Errorf("Min score = %+v, want 80 (default) / info", got)
	}
}

func TestConfigSummary_ReportsEnvSource(t *testing.T) {
	chtemp(t)
	clearServiceEnv(t)
	t.Setenv(config.EnvProject, "Web")
	cfg := config.Load()
	s := configSummary(cfg)
	for _, m := range s.Metrics {
		if m.Label == "Project" {
			if m.Value != "Web (env)" {
				t.Errorf("Project = %q, want \"Web (env)\"", m.Value)
			}
			return
		}
	}
	t.Fatal("no Project metric in config summary")
}
