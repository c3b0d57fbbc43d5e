package azdo

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is a test point outcome in the form the service records it.
type Outcome string

const (
	OutcomePassed        Outcome = "Passed"
	OutcomeFailed        Outcome = "Failed"
	OutcomeBlocked       Outcome = "Blocked"
	OutcomeNotApplicable Outcome = "NotApplicable"
	OutcomeInconclusive  Outcome = "Inconclusive"
	OutcomeTimeout       Outcome = "Timeout"
	OutcomeAborted       Outcome = "Aborted"
	OutcomeNone          Outcome = "None"
)

// Outcomes lists every outcome accepted for updates, in display order.
func Outcomes() []Outcome {
	return []Outcome{
		OutcomePassed,
		OutcomeFailed,
		OutcomeBlocked,
		OutcomeNotApplicable,
		OutcomeInconclusive,
		OutcomeTimeout,
		OutcomeAborted,
		OutcomeNone,
	}
}

// ParseOutcome maps user input to its canonical outcome, case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	for _, o := range Outcomes() {
		if strings.EqualFold(string(o), s) {
			return o, nil
		}
	}
	names := make([]string, 0, len(Outcomes()))
	for _, o := range Outcomes() {
		names = append(names, string(o))
	}
	return "", fmt.Errorf("unknown outcome %q (valid: %s)", s, strings.Join(names, ", "))
}

// Is compares outcomes case-insensitively; the service is not consistent
// about casing in responses.
func (o Outcome) Is(other Outcome) bool {
	return strings.EqualFold(string(o), string(other))
}

// TestPoint is a point-in-time snapshot of one test point. The service owns
// the record; the snapshot is never mutated locally and all change is
// expressed as an UpdatePoint call.
type TestPoint struct {
	ID            int
	PlanID        int
	SuiteID       int
	TestCaseID    int
	TestCaseName  string
	Configuration string
	AssignedTo    string
	State         string
	Outcome       Outcome
	Automated     bool
	LastTestRunID int
	LastResultID  int
}

// TestSuite identifies one suite within a plan.
type TestSuite struct {
	ID       int
	Name     string
	Type     string
	ParentID int
	PlanID   int
}

// TestCaseDetails is the work-item metadata behind a test case, fetched only
// for detailed listings.
type TestCaseDetails struct {
	ID               int
	Title            string
	State            string
	Priority         int
	AutomationStatus string
	AssignedTo       string
	CreatedBy        string
	CreatedAt        time.Time
	StepCount        int
	URL              string
}

// SuitePoints groups a suite with its points for plan-wide listings.
type SuitePoints struct {
	Suite  TestSuite
	Points []TestPoint
}
