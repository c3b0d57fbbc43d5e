// Package junitxml parses JUnit-style and pytest-style XML result files.
package junitxml

import "time"

// Status classifies a single test case result.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// TestOutcome is one test case parsed from a results file. Immutable once parsed.
type TestOutcome struct {
	Name           string // testcase name attribute, as written
	ClassName      string // enclosing classname/module attribute
	Suite          string // innermost testsuite name
	Duration       time.Duration
	Status         Status
	FailureMessage string    // failure/error/skipped marker text, if any
	ExecutedAt     time.Time // suite timestamp when present, else zero
}

// FullName returns "ClassName.Name", or just Name when no classname was set.
func (o TestOutcome) FullName() string {
	if o.ClassName == "" {
		return o.Name
	}
	return o.ClassName + "." + o.Name
}

// FileResult holds the outcomes parsed from a single XML document.
type FileResult struct {
	Path     string
	Outcomes []TestOutcome
}
