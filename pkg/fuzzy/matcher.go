package fuzzy

// DefaultMinScore is the accept threshold used when the caller does not
// configure one.
const DefaultMinScore = 80

// Strategy identifies which similarity function produced a winning score.
type Strategy string

const (
	StrategyExact     Strategy = "exact"
	StrategyPartial   Strategy = "partial"
	StrategyTokenSort Strategy = "token-sort"
)

// Candidate pairs a caller-owned index with a normalized name. The index is
// opaque to the matcher; callers use it to map a match back to their own
// records.
type Candidate struct {
	Index int
	Name  string
}

// Match is the winning candidate of a BestMatch call.
type Match struct {
	Candidate Candidate
	Score     int
	Strategy  Strategy
}

// BestMatch scores query against every candidate and returns the best one
// scoring at least minScore. A candidate's effective score is the maximum
// of the exact, partial and token-sort ratios. Ties keep the earliest
// candidate in the slice, so results are stable for a fixed candidate
// order. The boolean is false when the query is empty, the candidate list
// is empty, or no candidate reaches minScore.
func BestMatch(query string, candidates []Candidate, minScore int) (Match, bool) {
	if query == "" {
		return Match{}, false
	}

	var best Match
	found := false
	for _, c := range candidates {
		score, strategy := scoreOne(query, c.Name)
		if !found || score > best.Score {
			best = Match{Candidate: c, Score: score, Strategy: strategy}
			found = true
		}
	}
	if !found || best.Score < minScore {
		return Match{}, false
	}
	return best, true
}

// scoreOne returns max(exact, partial, token-sort) and the strategy that
// produced it; when strategies tie, exact wins over partial over token-sort.
func scoreOne(query, name string) (int, Strategy) {
	score := Ratio(query, name)
	strategy := StrategyExact

	if p := PartialRatio(query, name); p > score {
		score, strategy = p, StrategyPartial
	}
	if ts := TokenSortRatio(query, name); ts > score {
		score, strategy = ts, StrategyTokenSort
	}
	return score, strategy
}
