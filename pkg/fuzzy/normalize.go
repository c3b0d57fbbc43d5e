// Package fuzzy scores approximate matches between CI test names and test
// case names. All scores are integers on a 0..100 scale and every function
// here is deterministic: identical inputs always produce identical outputs.
package fuzzy

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// foldCaserPool pools cases.Fold instances; a cases.Caser is stateful and
// must not be shared between goroutines.
var foldCaserPool = sync.Pool{
	New: func() interface{} {
		c := cases.Fold()
		return &c
	},
}

func foldCase(s string) string {
	caser, ok := foldCaserPool.Get().(*cases.Caser)
	if !ok || caser == nil {
		c := cases.Fold()
		return c.String(s)
	}
	defer foldCaserPool.Put(caser)
	return caser.String(s)
}

// Normalize produces the comparable form of a test identifier: Unicode case
// folding, underscores and dots replaced with spaces, whitespace collapsed,
// and any leading "test" tokens dropped. Applying it twice gives the same
// result as applying it once. An all-boilerplate name (e.g. "test_")
// normalizes to the empty string.
func Normalize(raw string) string {
	s := foldCase(raw)
	s = strings.NewReplacer("_", " ", ".", " ").Replace(s)
	tokens := strings.Fields(s)
	for len(tokens) > 0 && tokens[0] == "test" {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}
