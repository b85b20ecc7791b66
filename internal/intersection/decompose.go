// Package intersection analyzes intersection types (A & { b: string } & C)
// written in type alias declarations and rebuilds merged object-literal text
// from their parts.
//
// The analysis is conservative: it only understands intersections made of
// object literal types and type references. Any other constituent makes
// Decompose return nil.
package intersection

import (
	"github.com/microsoft/typescript-go/shim/ast"
)

// PartKind classifies a flattened intersection constituent.
type PartKind int

const (
	PartObjectShape    PartKind = iota // { ... }
	PartNamedReference                 // Foo, ns.Foo, Foo<T>
)

func (k PartKind) String() string {
	switch k {
	case PartObjectShape:
		return "object"
	case PartNamedReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Part is one constituent of a flattened intersection, with any wrapping
// parentheses already removed.
type Part struct {
	Kind PartKind
	Node *ast.Node
}

// Members returns the type elements of an object shape, in source order.
// Named references have no members.
func (p Part) Members() []*ast.Node {
	if p.Kind != PartObjectShape {
		return nil
	}
	return shapeMembers(p.Node)
}

// IsEmpty reports whether the part is an object shape with no members.
func (p Part) IsEmpty() bool {
	return p.Kind == PartObjectShape && len(p.Members()) == 0
}

// DisplayText returns the verbatim source text of the part. For references
// this includes the dotted path and any type arguments.
func (p Part) DisplayText(src Source) string {
	return src.NodeText(p.Node)
}

// Analysis is the classified view of an intersection. It is only ever
// returned fully populated.
type Analysis struct {
	// Parts holds every flattened constituent in source order.
	Parts []Part
	// ObjectShapes holds the type literal constituents in source order.
	ObjectShapes []*ast.Node
	// NamedReferences holds the type reference constituents in source order.
	NamedReferences []*ast.Node
	// FirstObjectShape is the first type literal, or nil when there is none.
	FirstObjectShape *ast.Node
}

// Decompose flattens and classifies an intersection type node.
//
// It returns nil when node is not an intersection, when fewer than two
// constituents remain after flattening, or when any constituent is neither
// a type literal nor a type reference.
func Decompose(node *ast.Node) *Analysis {
	node = unwrapParens(node)
	if node == nil || node.Kind != ast.KindIntersectionType {
		return nil
	}

	leaves := Flatten(node)
	if len(leaves) < 2 {
		return nil
	}

	a := &Analysis{Parts: make([]Part, 0, len(leaves))}
	for _, leaf := range leaves {
		switch leaf.Kind {
		case ast.KindTypeLiteral:
			a.Parts = append(a.Parts, Part{Kind: PartObjectShape, Node: leaf})
			a.ObjectShapes = append(a.ObjectShapes, leaf)
			if a.FirstObjectShape == nil {
				a.FirstObjectShape = leaf
			}
		case ast.KindTypeReference:
			a.Parts = append(a.Parts, Part{Kind: PartNamedReference, Node: leaf})
			a.NamedReferences = append(a.NamedReferences, leaf)
		default:
			return nil
		}
	}

	if len(a.ObjectShapes) == 0 && len(a.NamedReferences) == 0 {
		return nil
	}
	return a
}

// Flatten expands nested intersections such as (A & B) & C into [A, B, C],
// keeping left-to-right order. Parentheses around constituents are removed.
// A node that is not an intersection is returned as a single leaf.
func Flatten(node *ast.Node) []*ast.Node {
	var leaves []*ast.Node
	var visit func(n *ast.Node)
	visit = func(n *ast.Node) {
		n = unwrapParens(n)
		if n == nil {
			return
		}
		if n.Kind != ast.KindIntersectionType {
			leaves = append(leaves, n)
			return
		}
		types := n.AsIntersectionTypeNode().Types
		if types == nil {
			return
		}
		for _, t := range types.Nodes {
			visit(t)
		}
	}
	visit(node)
	return leaves
}

// unwrapParens strips any number of parenthesized-type wrappers.
func unwrapParens(node *ast.Node) *ast.Node {
	for node != nil && node.Kind == ast.KindParenthesizedType {
		node = node.AsParenthesizedTypeNode().Type
	}
	return node
}

func shapeMembers(node *ast.Node) []*ast.Node {
	members := node.AsTypeLiteralNode().Members
	if members == nil {
		return nil
	}
	return members.Nodes
}
