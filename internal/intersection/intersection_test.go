package intersection

import (
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsgonest/tsprefer/internal/compiler"
)

// aliasType parses text and returns the source and the aliased type of its
// first type alias declaration.
func aliasType(t *testing.T, text string) (*FileSource, *ast.Node, *ast.Node) {
	t.Helper()
	sf, diags, err := compiler.ParseSource("input.ts", text)
	require.NoError(t, err)
	require.Empty(t, diags)
	for _, stmt := range sf.Statements.Nodes {
		if stmt.Kind == ast.KindTypeAliasDeclaration {
			return NewFileSource(sf), stmt, stmt.AsTypeAliasDeclaration().Type
		}
	}
	t.Fatalf("no type alias in %q", text)
	return nil, nil, nil
}

func texts(src Source, nodes []*ast.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, src.NodeText(n))
	}
	return out
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"pair", "type X = A & B;", []string{"A", "B"}},
		{"left nested", "type X = (A & B) & C;", []string{"A", "B", "C"}},
		{"right nested", "type X = A & (B & (C & D));", []string{"A", "B", "C", "D"}},
		{"parenthesized leaf", "type X = (A) & ((B));", []string{"A", "B"}},
		{"not an intersection", "type X = A;", []string{"A"}},
		{"union leaf kept whole", "type X = A & (B | C);", []string{"A", "B | C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, _, typ := aliasType(t, tt.input)
			assert.Equal(t, tt.want, texts(src, Flatten(typ)))
		})
	}
}

func TestDecompose(t *testing.T) {
	src, _, typ := aliasType(t, "type X = { a: string } & Base<T> & {} & ns.Other;")
	a := Decompose(typ)
	require.NotNil(t, a)

	require.Len(t, a.Parts, 4)
	kinds := []PartKind{a.Parts[0].Kind, a.Parts[1].Kind, a.Parts[2].Kind, a.Parts[3].Kind}
	assert.Equal(t, []PartKind{PartObjectShape, PartNamedReference, PartObjectShape, PartNamedReference}, kinds)

	assert.Equal(t, []string{"{ a: string }", "{}"}, texts(src, a.ObjectShapes))
	assert.Equal(t, []string{"Base<T>", "ns.Other"}, texts(src, a.NamedReferences))
	assert.Same(t, a.ObjectShapes[0], a.FirstObjectShape)
	assert.False(t, a.Parts[0].IsEmpty())
	assert.True(t, a.Parts[2].IsEmpty())
	assert.Len(t, a.Parts[0].Members(), 1)
	assert.Nil(t, a.Parts[1].Members())
}

func TestDecomposeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain reference", "type X = A;"},
		{"plain literal", "type X = { a: string };"},
		{"union", "type X = A | B;"},
		{"keyword constituent", "type X = Base & string;"},
		{"union constituent", "type X = { a: string } & (string | number);"},
		{"function constituent", "type X = A & (() => void);"},
		{"array constituent", "type X = A & B[];"},
		{"typeof constituent", "type X = A & typeof b;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, typ := aliasType(t, tt.input)
			assert.Nil(t, Decompose(typ))
		})
	}
	assert.Nil(t, Decompose(nil))
}

func TestDecomposeParenthesizedRoot(t *testing.T) {
	src, _, typ := aliasType(t, "type X = (A & { b: string });")
	a := Decompose(typ)
	require.NotNil(t, a)
	assert.Equal(t, []string{"A"}, texts(src, a.NamedReferences))
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		input   string
		summary string
		extends string
	}{
		{"type X = A & {};", "A & {}", "A"},
		{"type X = A & { a: string };", "A & { ... }", "A"},
		{"type X = {} & A & B<string>;", "{} & A & B<string>", "A, B<string>"},
		{"type X = A\n  & B\n  & {};", "A & B & {}", "A, B"},
		{"type X = { a: 1 } & { b: 2 };", "{ ... } & { ... }", ""},
	}
	for _, tt := range tests {
		src, _, typ := aliasType(t, tt.input)
		a := Decompose(typ)
		require.NotNil(t, a, tt.input)
		assert.Equal(t, tt.summary, Summarize(a, src), tt.input)
		assert.Equal(t, tt.extends, ExtendsClause(a, src), tt.input)
	}
	assert.Empty(t, Summarize(nil, nil))
	assert.Empty(t, ExtendsClause(nil, nil))
}

func TestMergeObjectShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "top level",
			input: "type X = { a: string; } & { b: number; };",
			want:  "{\n  a: string;\n  b: number;\n}",
		},
		{
			name:  "all empty",
			input: "type X = {} & {};",
			want:  "{}",
		},
		{
			name:  "members without separators",
			input: "    type X = { a: T } & { b: T };",
			want:  "{\n      a: T\n      b: T\n    }",
		},
		{
			name: "nested member keeps relative indentation",
			input: "type X = {\n" +
				"    nested: {\n" +
				"        deep: string;\n" +
				"    };\n" +
				"} & { b: number };",
			want: "{\n" +
				"  nested: {\n" +
				"      deep: string;\n" +
				"  };\n" +
				"  b: number\n" +
				"}",
		},
		{
			name:  "source order across shapes",
			input: "type X = { z: 1; a: 2 } & { m: 3 };",
			want:  "{\n  z: 1;\n  a: 2\n  m: 3\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, decl, typ := aliasType(t, tt.input)
			a := Decompose(typ)
			require.NotNil(t, a)
			assert.Equal(t, tt.want, MergeObjectShapes(decl, a.ObjectShapes, src))
		})
	}
}

func TestMergeObjectShapesNoShapes(t *testing.T) {
	src, decl, _ := aliasType(t, "type X = A & B;")
	assert.Equal(t, EmptyShape, MergeObjectShapes(decl, nil, src))
}

func TestReindent(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		memberIndent int
		target       int
		want         string
	}{
		{"single line", "a: string;", 4, 2, "  a: string;"},
		{"deeper continuation", "a: {\n      b: 1;\n    };", 4, 2, "  a: {\n    b: 1;\n  };"},
		{"shallower continuation clamps", "a: {\n  b: 1;\n};", 8, 2, "  a: {\n  b: 1;\n  };"},
		{"blank lines emptied", "a: {\n   \n  b: 1;\n};", 0, 2, "  a: {\n\n    b: 1;\n  };"},
		{"non-breaking spaces count as one column", "a: {\n\u00a0\u00a0\u00a0b: 1;\n};", 2, 2, "  a: {\n   b: 1;\n  };"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reindent(tt.text, tt.memberIndent, tt.target))
		})
	}
}

func TestIndentWidth(t *testing.T) {
	assert.Equal(t, 0, indentWidth(""))
	assert.Equal(t, 4, indentWidth("    "))
	assert.Equal(t, 1, indentWidth("\t"))
	assert.Equal(t, 2, indentWidth("\u00a0\u00a0"))
}

func TestLineIndent(t *testing.T) {
	text := "first\n    second\n\tthird line"
	assert.Equal(t, "", LineIndent(text, 0))
	assert.Equal(t, "    ", LineIndent(text, 10))
	assert.Equal(t, "  ", LineIndent(text, 8))
	assert.Equal(t, "\t", LineIndent(text, len(text)))
	assert.Equal(t, "", LineIndent(text, -3))
}

func TestSkipTriviaClamps(t *testing.T) {
	assert.Equal(t, 3, SkipTrivia("abc", 10))
	assert.Equal(t, 2, SkipTrivia("  x", 0))
	assert.Equal(t, 11, SkipTrivia("/* hi */\n  x", 0))
}
