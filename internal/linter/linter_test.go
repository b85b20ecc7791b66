package linter

import (
	"context"
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsgonest/tsprefer/internal/compiler"
	"github.com/tsgonest/tsprefer/internal/config"
	"github.com/tsgonest/tsprefer/internal/diagnostic"
	"github.com/tsgonest/tsprefer/internal/fix"
	"github.com/tsgonest/tsprefer/internal/lintcache"
	"github.com/tsgonest/tsprefer/internal/rules"
	"go.uber.org/zap/zaptest"
)

func parse(t *testing.T, name, text string) *ast.SourceFile {
	t.Helper()
	sf, diags, err := compiler.ParseSource(name, text)
	require.NoError(t, err)
	require.Empty(t, diags)
	return sf
}

func newLinter(t *testing.T, cfg config.Config, cache *lintcache.Cache) *Linter {
	t.Helper()
	l, err := New(&cfg, zaptest.NewLogger(t), cache)
	require.NoError(t, err)
	return l
}

const sample = `type Base = {};
type A = Base & {
  field: string;
};
type B = { a: string } & { b: number };
`

func TestLintFile(t *testing.T) {
	l := newLinter(t, config.DefaultConfig(), nil)
	res := l.LintFile(parse(t, "sample.ts", sample))

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, sample, res.Text)
	assert.False(t, res.Cached)

	first := res.Diagnostics[0]
	assert.Equal(t, rules.InterfaceExtendsName, first.Rule)
	assert.Equal(t, diagnostic.SeverityError, first.Severity)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, 1, first.Column)
	assert.Equal(t, 4, first.EndLine)
	assert.Equal(t, 3, first.EndColumn)
	assert.Equal(t, "Prefer using 'interface A extends Base' instead of 'type A = Base & { ... }'", first.Message)
	require.NotNil(t, first.Fix)

	second := res.Diagnostics[1]
	assert.Equal(t, rules.MergedTypeLiteralName, second.Rule)
	assert.Equal(t, 5, second.Line)

	out, applied := fix.Apply(res.Text, Edits(res.Diagnostics))
	assert.Equal(t, 2, applied)
	assert.Equal(t, `type Base = {};
interface A extends Base {
  field: string;
}
type B = {
  a: string
  b: number
};
`, out)
}

func TestLintFileSeverities(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.SetSeverity(rules.InterfaceExtendsName, "off"))
	require.NoError(t, cfg.SetSeverity(rules.MergedTypeLiteralName, "warn"))

	l := newLinter(t, cfg, nil)
	assert.Equal(t, []string{rules.MergedTypeLiteralName}, l.RuleNames())

	res := l.LintFile(parse(t, "sample.ts", sample))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diagnostic.SeverityWarning, res.Diagnostics[0].Severity)
}

func TestLintFileMergeObjectsOption(t *testing.T) {
	cfg := config.DefaultConfig()
	off := false
	cfg.Rules[rules.InterfaceExtendsName] = config.RuleConfig{Severity: "error", MergeObjects: &off}

	l := newLinter(t, cfg, nil)
	res := l.LintFile(parse(t, "multi.ts", "type C = A & { a: 1 } & { b: 2 };\n"))
	for _, d := range res.Diagnostics {
		assert.NotEqual(t, rules.InterfaceExtendsName, d.Rule)
	}
}

func TestLintFileCache(t *testing.T) {
	cache := lintcache.New("")
	l := newLinter(t, config.DefaultConfig(), cache)

	clean := parse(t, "clean.ts", "interface A {}\n")
	dirty := parse(t, "dirty.ts", "type A = B & {};\n")

	assert.False(t, l.LintFile(clean).Cached)
	assert.NotEmpty(t, l.LintFile(dirty).Diagnostics)
	assert.Equal(t, 1, cache.Len())

	again := l.LintFile(clean)
	assert.True(t, again.Cached)
	assert.Empty(t, again.Diagnostics)

	assert.False(t, l.LintFile(dirty).Cached, "files with findings are never cached")
}

func TestLintFilesOrder(t *testing.T) {
	l, err := New(ptr(config.DefaultConfig()), nil, nil, WithConcurrency(2))
	require.NoError(t, err)

	var files []*ast.SourceFile
	names := []string{"a.ts", "b.ts", "c.ts", "d.ts", "e.ts"}
	for _, name := range names {
		files = append(files, parse(t, name, "type X = Y & {};\n"))
	}

	results, err := l.LintFiles(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, len(files))
	for i, res := range results {
		assert.Equal(t, files[i].FileName(), res.File)
		assert.Len(t, res.Diagnostics, 1)
	}
}

func TestLintFilesCancelled(t *testing.T) {
	l := newLinter(t, config.DefaultConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.LintFiles(ctx, []*ast.SourceFile{parse(t, "a.ts", "type A = {};\n")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEdits(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{Fix: &fix.Edit{Start: 0, End: 1, Text: "x"}},
		{},
		{Fix: &fix.Edit{Start: 4, End: 5, Text: "y"}},
	}
	assert.Len(t, Edits(diags), 2)
}

func ptr[T any](v T) *T { return &v }
