package junitxml

import "time"

// Stats holds aggregate counts across parsed outcomes.
type Stats struct {
	Total    int
	Passed   int
	Failed   int
	Errors   int
	Skipped  int
	Duration time.Duration
}

// ComputeStats aggregates statistics from parsed outcomes.
func ComputeStats(outcomes []TestOutcome) Stats {
	var s Stats
	s.Total = len(outcomes)
	for _, o := range outcomes {
		switch o.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusError:
			s.Errors++
		case StatusSkipped:
			s.Skipped++
		}
		s.Duration += o.Duration
	}
	return s
}
