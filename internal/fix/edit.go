// Package fix applies rule fixes to source text and writes the result back.
package fix

import (
	"slices"
	"strings"
)

// Edit replaces the bytes [Start, End) of a text with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Apply applies edits to text. Edits are applied in start order; an edit
// that overlaps one already accepted, or that falls outside text, is
// skipped and left for a later pass. It returns the new text and the number
// of edits applied.
func Apply(text string, edits []Edit) (string, int) {
	if len(edits) == 0 {
		return text, 0
	}

	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})

	var sb strings.Builder
	sb.Grow(len(text))
	cursor := 0
	applied := 0
	for _, e := range sorted {
		if e.Start < cursor || e.End < e.Start || e.End > len(text) {
			continue
		}
		sb.WriteString(text[cursor:e.Start])
		sb.WriteString(e.Text)
		cursor = e.End
		applied++
	}
	sb.WriteString(text[cursor:])
	return sb.String(), applied
}
