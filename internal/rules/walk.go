package rules

import (
	"github.com/microsoft/typescript-go/shim/ast"
)

// TypeAliases returns every type alias declaration in sf in document order,
// including those nested in namespaces and blocks.
func TypeAliases(sf *ast.SourceFile) []*ast.Node {
	if sf == nil {
		return nil
	}
	var aliases []*ast.Node
	walkNode(sf.AsNode(), &aliases)
	return aliases
}

func walkNode(node *ast.Node, aliases *[]*ast.Node) {
	if node.Kind == ast.KindTypeAliasDeclaration {
		*aliases = append(*aliases, node)
	}

	node.ForEachChild(func(child *ast.Node) bool {
		walkNode(child, aliases)
		return false // continue visiting
	})
}
