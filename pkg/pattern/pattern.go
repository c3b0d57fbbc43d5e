// Package pattern defines the semantic data types for tpsync's output.
// Patterns carry data only; presentation belongs to the renderers.
package pattern

// PatternType identifies the kind of output pattern.
type PatternType string

const (
	PatternTypeSummary     PatternType = "summary"
	PatternTypePointTable  PatternType = "point-table"
	PatternTypeUpdateTable PatternType = "update-table"
	PatternTypeLeaderboard PatternType = "leaderboard"
	PatternTypeSparkline   PatternType = "sparkline"
	PatternTypeComparison  PatternType = "comparison"
)

// Pattern is the interface all output patterns implement.
// Patterns hold data; renderers decide how to present it.
type Pattern interface {
	Type() PatternType
}
