// Package rules implements the type-preference lint rules. Each rule looks
// at one type alias declaration at a time and either returns nil or a
// Finding carrying the message data and a proposed fix.
package rules

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/tsgonest/tsprefer/internal/intersection"
)

// Rule is a single lint check over type alias declarations.
type Rule interface {
	// Name returns the rule identifier used in config files and output.
	Name() string
	// Description returns a one-line summary of what the rule prefers.
	Description() string
	// Check inspects a TypeAliasDeclaration node. It returns nil when the
	// rule does not apply; it never returns an error.
	Check(decl *ast.Node, src intersection.Source) *Finding
}

// Fix replaces the source bytes [Start, End) with Text.
type Fix struct {
	Start int
	End   int
	Text  string
}

// Finding is a rule violation on one declaration.
type Finding struct {
	Rule      string
	MessageID string

	// Name is the declared type alias name.
	Name string
	// ExtendsName is the rendered extends clause, empty for rules without one.
	ExtendsName string
	// ExtendsIntersection is the abbreviated rendering of the original
	// intersection, empty for rules without one.
	ExtendsIntersection string

	// Pos and End delimit the reported declaration, without leading trivia.
	Pos int
	End int

	Fix *Fix
}

// Data returns the message interpolation values.
func (f *Finding) Data() map[string]string {
	data := map[string]string{"name": f.Name}
	if f.ExtendsName != "" {
		data["extendsName"] = f.ExtendsName
	}
	if f.ExtendsIntersection != "" {
		data["extendsNameIntersection"] = f.ExtendsIntersection
	}
	return data
}

// Message renders the finding's message template.
func (f *Finding) Message() string {
	return Interpolate(messages[f.MessageID], f.Data())
}

// Message ids.
const (
	MessagePreferInterfaceExtends  = "preferInterfaceExtends"
	MessagePreferMergedTypeLiteral = "preferMergedTypeLiteral"
)

var messages = map[string]string{
	MessagePreferInterfaceExtends:  "Prefer using 'interface {{name}} extends {{extendsName}}' instead of 'type {{name}} = {{extendsNameIntersection}}'",
	MessagePreferMergedTypeLiteral: "Prefer merging object intersections into a single type literal instead of using '&'.",
}

// Interpolate replaces {{key}} placeholders in template with values from
// data. Placeholders without a value are left as they are.
func Interpolate(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	var sb strings.Builder
	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		closeIdx := strings.Index(rest[open:], "}}")
		if closeIdx < 0 {
			break
		}
		closeIdx += open
		key := strings.TrimSpace(rest[open+2 : closeIdx])
		sb.WriteString(rest[:open])
		if v, ok := data[key]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(rest[open : closeIdx+2])
		}
		rest = rest[closeIdx+2:]
	}
	sb.WriteString(rest)
	return sb.String()
}
