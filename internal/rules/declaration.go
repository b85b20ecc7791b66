package rules

import (
	"strings"
	"unicode"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/tsgonest/tsprefer/internal/intersection"
)

// declaration is the textual anatomy of a type alias declaration needed to
// rebuild it under a different keyword.
type declaration struct {
	node *ast.Node
	// annotation is the aliased type (the right-hand side of =).
	annotation *ast.Node

	start int
	end   int

	// modifiers is the verbatim text between the declaration start and the
	// type keyword, including its trailing whitespace ("export ", "declare ").
	modifiers  string
	name       string
	typeParams string
}

// readDeclaration returns nil for anything that is not a type alias with an
// aliased type.
func readDeclaration(node *ast.Node, src intersection.Source) *declaration {
	if node == nil || node.Kind != ast.KindTypeAliasDeclaration {
		return nil
	}
	alias := node.AsTypeAliasDeclaration()
	if alias.Type == nil || alias.Name() == nil {
		return nil
	}

	text := src.Text()
	d := &declaration{
		node:       node,
		annotation: alias.Type,
		start:      src.NodeStart(node),
		end:        node.End(),
		name:       alias.Name().Text(),
	}

	if mods := node.Modifiers(); mods != nil && len(mods.Nodes) > 0 {
		keyword := intersection.SkipTrivia(text, mods.End())
		if keyword > d.start {
			d.modifiers = text[d.start:keyword]
		}
	}

	if params := alias.TypeParameters; params != nil && len(params.Nodes) > 0 {
		open := intersection.SkipTrivia(text, alias.Name().End())
		closing := intersection.SkipTrivia(text, params.End())
		if open < len(text) && text[open] == '<' && closing < len(text) && text[closing] == '>' {
			d.typeParams = text[open : closing+1]
		} else {
			d.typeParams = "<" + strings.TrimSpace(text[params.Pos():params.End()]) + ">"
		}
	}

	return d
}

// followedBySemicolon reports whether the first non-whitespace character
// after the declaration is a semicolon.
//
// This is a textual heuristic: a comment between the declaration and the
// semicolon hides it.
func (d *declaration) followedBySemicolon(src intersection.Source) bool {
	text := src.Text()
	if d.end >= len(text) {
		return false
	}
	rest := strings.TrimLeftFunc(text[d.end:], unicode.IsSpace)
	return strings.HasPrefix(rest, ";")
}

// fix builds a Fix replacing the whole declaration.
func (d *declaration) fix(replacement string) *Fix {
	return &Fix{Start: d.start, End: d.end, Text: replacement}
}

func semicolonIf(cond bool) string {
	if cond {
		return ";"
	}
	return ""
}
