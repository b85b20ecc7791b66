package intersection

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microsoft/typescript-go/shim/ast"
)

// EmptyShape is the canonical text of an object literal type with no members.
const EmptyShape = "{}"

// indentUnit is the width members are indented past the anchor's line.
const indentUnit = 2

// MergeObjectShapes concatenates the members of every shape into a single
// object literal type.
//
// Members keep their source order (shape order, then member order); nothing
// is sorted or deduplicated. The closing brace is aligned with the line the
// anchor starts on, each member's first line sits one indent unit deeper,
// and continuation lines inside a member keep their offset relative to that
// member's first line.
func MergeObjectShapes(anchor *ast.Node, shapes []*ast.Node, src Source) string {
	if len(shapes) == 0 {
		return EmptyShape
	}

	var members []*ast.Node
	for _, shape := range shapes {
		members = append(members, shapeMembers(shape)...)
	}
	if len(members) == 0 {
		return EmptyShape
	}

	text := src.Text()
	baseIndent := LineIndent(text, src.NodeStart(anchor))

	formatted := make([]string, 0, len(members))
	for _, member := range members {
		memberText := src.NodeText(member)
		if strings.TrimSpace(memberText) == "" {
			continue
		}
		memberIndent := indentWidth(LineIndent(text, src.NodeStart(member)))
		formatted = append(formatted, reindent(memberText, memberIndent, indentWidth(baseIndent)+indentUnit))
	}

	var sb strings.Builder
	sb.WriteString("{\n")
	sb.WriteString(strings.Join(formatted, "\n"))
	sb.WriteString("\n")
	sb.WriteString(baseIndent)
	sb.WriteString("}")
	return sb.String()
}

// reindent shifts a member's lines so the first one starts at target
// columns. The first line is measured against memberIndent, the indentation
// of the line the member starts on, since its text carries no leading
// whitespace of its own.
func reindent(memberText string, memberIndent, target int) string {
	lines := strings.Split(memberText, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lead := leadingWhitespace(line)
		content := line[len(lead):]

		lineIndent := indentWidth(lead)
		if i == 0 {
			lineIndent = memberIndent
		}
		relative := max(0, lineIndent-memberIndent)
		lines[i] = strings.Repeat(" ", target+relative) + content
	}
	return strings.Join(lines, "\n")
}

// indentWidth counts indentation in characters, so a multi-byte space such
// as U+00A0 is one column.
func indentWidth(lead string) int {
	return utf8.RuneCountInString(lead)
}

// LineIndent returns the leading whitespace of the line containing pos.
// Only whitespace that precedes pos on that line is considered.
func LineIndent(text string, pos int) string {
	pos = min(max(pos, 0), len(text))
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	return leadingWhitespace(text[lineStart:pos])
}

func leadingWhitespace(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
	if end < 0 {
		return s
	}
	return s[:end]
}
