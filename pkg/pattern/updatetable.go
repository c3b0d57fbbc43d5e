package pattern

// Row statuses understood by the renderers.
const (
	RowUpdated   = "updated"
	RowSimulated = "simulated"
	RowFailed    = "failed"
	RowSkipped   = "skipped"
	RowUnmatched = "unmatched"
)

// UpdateTable represents the per-point results of a sync or update run.
type UpdateTable struct {
	Label string
	Rows  []UpdateRow
}

// UpdateRow is a single attempted (or skipped) point update.
type UpdateRow struct {
	Name    string
	PointID int
	Outcome string // target outcome, e.g. "Passed"
	Score   int    // match score 0..100, 0 when not from matching
	Status  string // one of the Row* constants
	Details string // error text or unmatched reason
}

func (u *UpdateTable) Type() PatternType { return PatternTypeUpdateTable }
