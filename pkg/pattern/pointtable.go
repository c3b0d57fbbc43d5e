package pattern

// PointTable represents test points from one suite in tabular form.
type PointTable struct {
	Label   string // e.g., "Login Tests (12 points)"
	SuiteID int
	Points  []PointRow
}

// PointRow is a single test point entry.
type PointRow struct {
	ID         int
	Name       string
	Outcome    string // lowercased service outcome, e.g. "passed", "failed", "" for never-run
	State      string
	AssignedTo string
	Automated  bool
	Details    string // multi-line extras shown in detailed listings
}

func (p *PointTable) Type() PatternType { return PatternTypePointTable }
