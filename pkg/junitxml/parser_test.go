package junitxml

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_BasicStatuses(t *testing.T) {
	input := `<?xml version="1.0" encoding="utf-8"?>
<testsuites>
  <testsuite name="pytest" tests="4" failures="1" errors="1" skipped="1">
    <testcase classname="tests.test_auth" name="test_login_success" time="0.120"/>
    <testcase classname="tests.test_auth" name="test_login_denied" time="0.340">
      <failure message="assert 401 == 200">AssertionError</failure>
    </testcase>
    <testcase classname="tests.test_auth" name="test_login_timeout" time="1.000">
      <error message="ConnectionError">socket timeout</error>
    </testcase>
    <testcase classname="tests.test_auth" name="test_login_sso" time="0">
      <skipped message="requires SSO fixture"/>
    </testcase>
  </testsuite>
</testsuites>`

	outcomes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}

	want := []struct {
		name    string
		status  Status
		message string
	}{
		{"test_login_success", StatusPassed, ""},
		{"test_login_denied", StatusFailed, "assert 401 == 200"},
		{"test_login_timeout", StatusError, "ConnectionError"},
		{"test_login_sso", StatusSkipped, "requires SSO fixture"},
	}
	for i, w := range want {
		o := outcomes[i]
		if o.Name != w.name {
			t.Errorf("outcome %d: expected name %q, got %q", i, w.name, o.Name)
		}
		if o.Status != w.status {
			t.Errorf("outcome %d: expected status %s, got %s", i, w.status, o.Status)
		}
		if o.FailureMessage != w.message {
			t.Errorf("outcome %d: expected message %q, got %q", i, w.message, o.FailureMessage)
		}
		if o.ClassName != "tests.test_auth" {
			t.Errorf("outcome %d: expected classname tests.test_auth, got %q", i, o.ClassName)
		}
		if o.Suite != "pytest" {
			t.Errorf("outcome %d: expected suite pytest, got %q", i, o.Suite)
		}
	}
	if outcomes[0].Duration != 120*time.Millisecond {
		t.Errorf("expected 120ms duration, got %s", outcomes[0].Duration)
	}
}

func TestParse_BareSuiteRoot(t *testing.T) {
	input := `<testsuite name="unit" tests="1">
  <testcase classname="CalcTest" name="testAdd" time="0.01"/>
</testsuite>`

	outcomes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].FullName() != "CalcTest.testAdd" {
		t.Errorf("expected full name CalcTest.testAdd, got %q", outcomes[0].FullName())
	}
}

func TestParse_NestedSuites(t *testing.T) {
	input := `<testsuites>
  <testsuite name="outer" timestamp="2024-03-01T10:00:00">
    <testsuite name="inner">
      <testcase name="test_nested" time="0.5"/>
    </testsuite>
    <testcase name="test_outer" time="0.1"/>
  </testsuite>
</testsuites>`

	outcomes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	// Direct cases of a suite come before its nested suites.
	if outcomes[0].Name != "test_outer" || outcomes[0].Suite != "outer" {
		t.Errorf("expected test_outer in outer first, got %q in %q", outcomes[0].Name, outcomes[0].Suite)
	}
	if outcomes[1].Name != "test_nested" || outcomes[1].Suite != "inner" {
		t.Errorf("expected test_nested in inner, got %q in %q", outcomes[1].Name, outcomes[1].Suite)
	}
	// The inner suite has no timestamp of its own and inherits the outer one.
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !outcomes[1].ExecutedAt.Equal(want) {
		t.Errorf("expected inherited timestamp %s, got %s", want, outcomes[1].ExecutedAt)
	}
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := Parse(strings.NewReader("this is not xml <<<"))
	if err == nil {
		t.Fatal("expected error for malformed input")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestParse_UnexpectedRoot(t *testing.T) {
	_, err := Parse(strings.NewReader("<report><testcase name='x'/></report>"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError for unexpected root, got %v", err)
	}
}

func TestParse_NoTestCases(t *testing.T) {
	_, err := Parse(strings.NewReader("<testsuites><testsuite name='empty'/></testsuites>"))
	if !errors.Is(err, ErrNoTestCases) {
		t.Fatalf("expected ErrNoTestCases, got %v", err)
	}
}

func TestParse_MarkerBodyFallback(t *testing.T) {
	input := `<testsuite name="s">
  <testcase name="test_a">
    <failure>
      stack trace line 1
    </failure>
  </testcase>
</testsuite>`

	outcomes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if outcomes[0].FailureMessage != "stack trace line 1" {
		t.Errorf("expected chardata fallback, got %q", outcomes[0].FailureMessage)
	}
}

func TestParse_BadTimeAttr(t *testing.T) {
	input := `<testsuite name="s">
  <testcase name="test_a" time="n/a"/>
  <testcase name="test_b"/>
</testsuite>`

	outcomes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	for i, o := range outcomes {
		if o.Duration != 0 {
			t.Errorf("outcome %d: expected zero duration, got %s", i, o.Duration)
		}
	}
}

func TestParseGlobs(t *testing.T) {
	dir := t.TempDir()
	doc := func(name string) string {
		return `<testsuite name="s"><testcase name="` + name + `"/></testsuite>`
	}
	writeFile(t, dir, "reports/b.xml", doc("test_b"))
	writeFile(t, dir, "reports/a.xml", doc("test_a"))
	writeFile(t, dir, "reports/nested/c.xml", doc("test_c"))

	files, err := ParseGlobs([]string{filepath.Join(dir, "reports", "**", "*.xml")})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	all := Outcomes(files)
	names := make([]string, 0, len(all))
	for _, o := range all {
		names = append(names, o.Name)
	}
	// Lexical order within a pattern.
	want := []string{"test_a", "test_b", "test_c"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestParseGlobs_NoMatch(t *testing.T) {
	dir := t.TempDir()
	_, err := ParseGlobs([]string{filepath.Join(dir, "*.xml")})
	if err == nil {
		t.Fatal("expected error for pattern with no matches")
	}
	if !strings.Contains(err.Error(), "no files match") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseGlobs_DuplicateAcrossPatterns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r.xml", `<testsuite name="s"><testcase name="test_once"/></testsuite>`)

	files, err := ParseGlobs([]string{path, filepath.Join(dir, "*.xml")})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected duplicate match to be read once, got %d files", len(files))
	}
}

func TestParseGlobs_MalformedFileAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.xml", `<testsuite name="s"><testcase name="test_ok"/></testsuite>`)
	writeFile(t, dir, "bad.xml", "<<< not xml")

	_, err := ParseGlobs([]string{filepath.Join(dir, "*.xml")})
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Path == "" {
		t.Error("expected parse error to carry the file path")
	}
}

func TestComputeStats(t *testing.T) {
	outcomes := []TestOutcome{
		{Name: "a", Status: StatusPassed, Duration: time.Second},
		{Name: "b", Status: StatusPassed, Duration: time.Second},
		{Name: "c", Status: StatusFailed, Duration: 2 * time.Second},
		{Name: "d", Status: StatusError},
		{Name: "e", Status: StatusSkipped},
	}
	s := ComputeStats(outcomes)
	if s.Total != 5 || s.Passed != 2 || s.Failed != 1 || s.Errors != 1 || s.Skipped != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if s.Duration != 4*time.Second {
		t.Errorf("expected 4s total duration, got %s", s.Duration)
	}
}

func TestFullName(t *testing.T) {
	o := TestOutcome{Name: "test_x"}
	if o.FullName() != "test_x" {
		t.Errorf("expected bare name, got %q", o.FullName())
	}
	o.ClassName = "suite.Case"
	if o.FullName() != "suite.Case.test_x" {
		t.Errorf("expected dotted name, got %q", o.FullName())
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
