// Package render provides output renderers for tpsync's result patterns.
package render

import "github.com/dkoosis/tpsync/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}
