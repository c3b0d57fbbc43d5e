package pattern

// Sparkline represents a word-sized graphic using Unicode blocks, used for
// the match-score distribution of a run.
type Sparkline struct {
	Label  string
	Values []float64
	Min    float64 // 0 = auto-detect
	Max    float64 // 0 = auto-detect
	Unit   string  // e.g., "ms", "%"
}

func (s *Sparkline) Type() PatternType { return PatternTypeSparkline }
