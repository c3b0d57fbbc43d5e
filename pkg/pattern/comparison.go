package pattern

// Comparison represents before/after metric comparisons, such as the shift
// in outcome tallies a run produced (or would produce, in a dry run).
type Comparison struct {
	Label   string
	Changes []ComparisonItem
}

// ComparisonItem is a single before/after delta.
type ComparisonItem struct {
	Label  string
	Before string
	After  string
	Change float64 // positive or negative
	Unit   string  // e.g., "%", "ms", or "" for plain counts
}

func (c *Comparison) Type() PatternType { return PatternTypeComparison }
