package fuzzy

import (
	"math"
	"sort"
	"strings"
)

// Ratio scores the whole of a against the whole of b using edit distance
// over runes, with substitutions costing two (so the result tracks the
// classic two-times-matches-over-total-length similarity). Two empty
// strings score 100; an empty string against anything else scores 0.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	dist := indelDistance(ra, rb)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// PartialRatio scores the shorter string against every equal-length rune
// window of the longer and returns the best, so a name embedded in a longer
// phrase still scores high. Empty-versus-nonempty scores 0.
func PartialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 100
		}
		return 0
	}
	best := 0
	for i := 0; i+len(ra) <= len(rb); i++ {
		window := rb[i : i+len(ra)]
		total := len(ra) + len(window)
		score := int(math.Round(100 * float64(total-indelDistance(ra, window)) / float64(total)))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares the two strings with their whitespace-separated
// tokens sorted, so word order does not matter.
func TokenSortRatio(a, b string) int {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// indelDistance is edit distance where insert and delete cost one and
// substitution costs two (equivalently: substitution disallowed). Two-row
// dynamic programming, O(len(a)*len(b)) time, O(len(b)) space.
func indelDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + 2
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
