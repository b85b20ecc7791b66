package rules

import (
	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/tsgonest/tsprefer/internal/intersection"
)

// MergedTypeLiteralName is the config key of MergedTypeLiteral.
const MergedTypeLiteralName = "prefer-merged-type-literal-over-intersection"

// MergedTypeLiteral flags intersections made only of object literals, such
// as `type A = { a: string } & { b: number }`, and merges them into one
// literal. Intersections that mention a named type belong to
// InterfaceExtends and are skipped here.
type MergedTypeLiteral struct{}

func NewMergedTypeLiteral() *MergedTypeLiteral {
	return &MergedTypeLiteral{}
}

func (r *MergedTypeLiteral) Name() string { return MergedTypeLiteralName }

func (r *MergedTypeLiteral) Description() string {
	return "Prefer merging object intersections into a single type literal"
}

func (r *MergedTypeLiteral) Check(node *ast.Node, src intersection.Source) *Finding {
	decl := readDeclaration(node, src)
	if decl == nil {
		return nil
	}

	a := intersection.Decompose(decl.annotation)
	if a == nil || len(a.NamedReferences) > 0 || len(a.ObjectShapes) < 2 {
		return nil
	}

	body := intersection.MergeObjectShapes(node, a.ObjectShapes, src)
	semicolon := semicolonIf(len(a.ObjectShapes) > 1 || decl.followedBySemicolon(src))
	replacement := decl.modifiers + "type " + decl.name + decl.typeParams + " = " + body + semicolon

	return &Finding{
		Rule:      MergedTypeLiteralName,
		MessageID: MessagePreferMergedTypeLiteral,
		Name:      decl.name,
		Pos:       decl.start,
		End:       decl.end,
		Fix:       decl.fix(replacement),
	}
}
