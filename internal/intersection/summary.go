package intersection

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
)

const (
	emptyShapeSummary    = "{}"
	nonEmptyShapeSummary = "{ ... }"
)

// Summarize renders the intersection for humans: references by their text,
// object shapes abbreviated to {} or { ... }. The result is only meant for
// messages and is never used as replacement text.
func Summarize(a *Analysis, src Source) string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, len(a.Parts))
	for _, p := range a.Parts {
		switch {
		case p.Kind == PartNamedReference:
			parts = append(parts, p.DisplayText(src))
		case p.IsEmpty():
			parts = append(parts, emptyShapeSummary)
		default:
			parts = append(parts, nonEmptyShapeSummary)
		}
	}
	return strings.Join(parts, " & ")
}

// ExtendsClause joins the text of every named reference with ", ", ready to
// follow an interface's extends keyword.
func ExtendsClause(a *Analysis, src Source) string {
	if a == nil {
		return ""
	}
	names := make([]string, 0, len(a.NamedReferences))
	for _, ref := range a.NamedReferences {
		names = append(names, src.NodeText(ref))
	}
	return strings.Join(names, ", ")
}

// ShapeText returns the verbatim text of a single object shape, or {} when
// shape is nil.
func ShapeText(shape *ast.Node, src Source) string {
	if shape == nil {
		return EmptyShape
	}
	return src.NodeText(shape)
}
