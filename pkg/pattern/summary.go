package pattern

// SummaryKind identifies what a summary describes (avoids string-prefix matching).
type SummaryKind string

const (
	SummaryKindPoints SummaryKind = "points"
	SummaryKindRun    SummaryKind = "run"
	SummaryKindConfig SummaryKind = "config"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string
	Kind    SummaryKind // dispatch key for renderers
	Metrics []SummaryItem
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string // e.g., "Updated", "Failed", "Unmatched"
	Value string // formatted value
	Kind  string // "success", "error", "warning", "info"; drives coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
