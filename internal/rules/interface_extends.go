package rules

import (
	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/tsgonest/tsprefer/internal/intersection"
)

// InterfaceExtendsName is the config key of InterfaceExtends.
const InterfaceExtendsName = "prefer-interface-extends-over-type-intersection"

// InterfaceExtends flags type aliases like `type C = A & B & { x: string }`
// that can be written as `interface C extends A, B { x: string }`.
type InterfaceExtends struct {
	// MergeObjects allows several object literals to be folded into the
	// interface body. When false, intersections with more than one object
	// literal are left alone.
	MergeObjects bool
}

// NewInterfaceExtends returns the rule with its default options.
func NewInterfaceExtends() *InterfaceExtends {
	return &InterfaceExtends{MergeObjects: true}
}

func (r *InterfaceExtends) Name() string { return InterfaceExtendsName }

func (r *InterfaceExtends) Description() string {
	return "Prefer interface extends over type intersection"
}

func (r *InterfaceExtends) Check(node *ast.Node, src intersection.Source) *Finding {
	decl := readDeclaration(node, src)
	if decl == nil {
		return nil
	}

	a := intersection.Decompose(decl.annotation)
	if a == nil {
		return nil
	}
	if !r.MergeObjects && len(a.ObjectShapes) > 1 {
		return nil
	}
	if len(a.NamedReferences) == 0 {
		return nil
	}

	extendsClause := intersection.ExtendsClause(a, src)

	var body string
	if r.MergeObjects {
		body = intersection.MergeObjectShapes(node, a.ObjectShapes, src)
	} else {
		body = intersection.ShapeText(a.FirstObjectShape, src)
	}

	semicolon := semicolonIf((r.MergeObjects && len(a.ObjectShapes) > 1) || decl.followedBySemicolon(src))
	replacement := decl.modifiers + "interface " + decl.name + decl.typeParams +
		" extends " + extendsClause + " " + body + semicolon

	return &Finding{
		Rule:                InterfaceExtendsName,
		MessageID:           MessagePreferInterfaceExtends,
		Name:                decl.name,
		ExtendsName:         extendsClause,
		ExtendsIntersection: intersection.Summarize(a, src),
		Pos:                 decl.start,
		End:                 decl.end,
		Fix:                 decl.fix(replacement),
	}
}
