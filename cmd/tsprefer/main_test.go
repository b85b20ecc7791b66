package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsgonest/tsprefer/internal/config"
	"github.com/tsgonest/tsprefer/internal/rules"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// setupProject writes files into a fresh directory and makes it the
// working directory for the test.
func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

const tsconfig = `{
  "compilerOptions": { "strict": true, "noEmit": true },
  "include": ["src"]
}
`

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "--version")
	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, "tsprefer "+version+"\n", res.stdout)
}

func TestRulesCommand(t *testing.T) {
	res := runCLI(t, "", "rules")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, rules.InterfaceExtendsName)
	assert.Contains(t, res.stdout, rules.MergedTypeLiteralName)
	assert.Contains(t, res.stdout, "mergeObjects")

	res = runCLI(t, "", "rules", "--json")
	require.Equal(t, exitOK, res.code, res.stderr)
	var listings []ruleListing
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &listings))
	require.Len(t, listings, 2)
	assert.Equal(t, "error", listings[0].DefaultSeverity)
}

func TestInitCommand(t *testing.T) {
	dir := setupProject(t, nil)

	res := runCLI(t, "", "init")
	require.Equal(t, exitOK, res.code, res.stderr)

	path := filepath.Join(dir, "tsprefer.config.json")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Cache.Enabled)

	res = runCLI(t, "", "init")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "already exists")

	res = runCLI(t, "", "init", "--force")
	assert.Equal(t, exitOK, res.code)
}

func TestLintStdin(t *testing.T) {
	setupProject(t, nil)

	res := runCLI(t, "type A = B & {};\n", "lint", "--stdin", "--format", "plain")
	assert.Equal(t, exitProblems, res.code)
	assert.Equal(t,
		"stdin.ts(1,1): error prefer-interface-extends-over-type-intersection: Prefer using 'interface A extends B' instead of 'type A = B & {}'\n",
		res.stdout)
}

func TestLintStdinClean(t *testing.T) {
	setupProject(t, nil)

	res := runCLI(t, "interface A extends B {}\n", "--stdin")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Empty(t, res.stdout)
}

func TestLintStdinFix(t *testing.T) {
	setupProject(t, nil)

	res := runCLI(t, "type A = { a: string } & { b: number };\n", "lint", "--stdin", "--fix")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "type A = {\n  a: string\n  b: number\n};\n", res.stdout)
}

func TestLintStdinRuleOverride(t *testing.T) {
	setupProject(t, nil)

	res := runCLI(t, "type A = B & {};\n", "--stdin", "--rule", rules.InterfaceExtendsName+"=warn", "--format", "plain")
	assert.Equal(t, exitOK, res.code, "warnings alone do not fail the run")
	assert.Contains(t, res.stdout, "warning "+rules.InterfaceExtendsName)

	res = runCLI(t, "type A = B & {};\n", "--stdin", "--rule", rules.InterfaceExtendsName+"=warn", "--strict")
	assert.Equal(t, exitProblems, res.code)

	res = runCLI(t, "type A = B & {};\n", "--stdin", "--rule", rules.InterfaceExtendsName+"=warn", "--quiet")
	assert.Equal(t, exitOK, res.code)
	assert.Empty(t, res.stdout)
}

func TestLintUsageErrors(t *testing.T) {
	setupProject(t, nil)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad rule override", []string{"--stdin", "--rule", "nope"}, "want name=severity"},
		{"unknown rule", []string{"--stdin", "--rule", "nope=error"}, "unknown rule"},
		{"bad severity", []string{"--stdin", "--rule", rules.InterfaceExtendsName + "=loud"}, "invalid severity"},
		{"bad format", []string{"--stdin", "--format", "xml"}, "unknown format"},
		{"fix and dry run", []string{"--fix", "--fix-dry-run"}, "cannot be combined"},
		{"unknown flag", []string{"--frobnicate"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "type A = {};\n", tt.args...)
			assert.Equal(t, exitFailure, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestLintStdinSyntaxError(t *testing.T) {
	setupProject(t, nil)

	res := runCLI(t, "type A = {\n", "--stdin")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "error")
}

func TestLintProject(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"tsconfig.json": tsconfig,
		"src/types.ts":  "type Base = {};\ntype A = Base & {\n  field: string;\n};\n",
		"src/clean.ts":  "interface C {}\n",
	})

	res := runCLI(t, "", "lint", "--format", "plain")
	assert.Equal(t, exitProblems, res.code, res.stderr)
	assert.Equal(t,
		"src/types.ts(2,1): error prefer-interface-extends-over-type-intersection: Prefer using 'interface A extends Base' instead of 'type A = Base & { ... }'\n",
		res.stdout)
	assert.FileExists(t, filepath.Join(dir, ".tsprefer-cache"))

	res = runCLI(t, "", "lint", "--fix-dry-run", "--no-cache")
	assert.Contains(t, res.stdout, "--- a/src/types.ts")
	assert.Contains(t, res.stdout, "+interface A extends Base {")

	res = runCLI(t, "", "lint", "--fix")
	assert.Equal(t, exitOK, res.code, res.stdout+res.stderr)
	data, err := os.ReadFile(filepath.Join(dir, "src", "types.ts"))
	require.NoError(t, err)
	assert.Equal(t, "type Base = {};\ninterface A extends Base {\n  field: string;\n}\n", string(data))

	res = runCLI(t, "", "lint")
	assert.Equal(t, exitOK, res.code, res.stdout+res.stderr)
}

func TestLintProjectPathsAndExclude(t *testing.T) {
	setupProject(t, map[string]string{
		"tsconfig.json":        tsconfig,
		"tsprefer.config.json": `{"exclude": ["src/generated/**"]}`,
		"src/models/a.ts":      "type A = B & {};\n",
		"src/other/b.ts":       "type B = C & {};\n",
		"src/generated/c.ts":   "type C = D & {};\n",
	})

	res := runCLI(t, "", "--format", "plain", "--no-cache", "src/models")
	assert.Equal(t, exitProblems, res.code, res.stderr)
	assert.Contains(t, res.stdout, "src/models/a.ts")
	assert.NotContains(t, res.stdout, "src/other/b.ts")

	res = runCLI(t, "", "--format", "plain", "--no-cache")
	assert.Contains(t, res.stdout, "src/other/b.ts")
	assert.NotContains(t, res.stdout, "src/generated")
}

func TestLintProjectJSON(t *testing.T) {
	setupProject(t, map[string]string{
		"tsconfig.json": tsconfig,
		"src/a.ts":      "type A = { a: 1 } & { b: 2 };\n",
	})

	res := runCLI(t, "", "--format", "json", "--no-cache")
	assert.Equal(t, exitProblems, res.code, res.stderr)

	var files []struct {
		FilePath string `json:"filePath"`
		Messages []struct {
			RuleID string `json:"ruleId"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &files))
	require.Len(t, files, 1)
	assert.Equal(t, rules.MergedTypeLiteralName, files[0].Messages[0].RuleID)
}

func TestLintProjectSyntaxError(t *testing.T) {
	setupProject(t, map[string]string{
		"tsconfig.json": tsconfig,
		"src/bad.ts":    "type A = {\n",
		"src/good.ts":   "type B = C & {};\n",
	})

	res := runCLI(t, "", "--format", "plain", "--no-cache")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "src/bad.ts")
	assert.Contains(t, res.stdout, "src/good.ts(1,1)")
}

func TestLintMissingTSConfig(t *testing.T) {
	setupProject(t, nil)

	res := runCLI(t, "", "lint", "-p", "missing.json")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "could not find tsconfig")
}

func TestLintInvalidConfig(t *testing.T) {
	setupProject(t, map[string]string{
		"tsconfig.json":  tsconfig,
		".tsprefer.yaml": "rules:\n  nope:\n    severity: error\n",
	})

	res := runCLI(t, "", "lint")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "unknown rule")
}

func TestLintConfigWarnings(t *testing.T) {
	setupProject(t, map[string]string{
		"tsprefer.config.json": `{
  "rules": {
    "prefer-merged-type-literal-over-intersection": { "severity": "error", "mergeObjects": false }
  }
}`,
	})

	res := runCLI(t, "interface A {}\n", "--stdin")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Config warning")
	assert.Contains(t, res.stderr, "rules.prefer-merged-type-literal-over-intersection.mergeObjects: option is ignored by this rule")
}

func TestLintRemovesDisabledCache(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"tsconfig.json":        tsconfig,
		"tsprefer.config.json": `{"cache": {"enabled": false}}`,
		"src/a.ts":             "interface A {}\n",
		".tsprefer-cache":      `{"v": 1, "configHash": "", "clean": {}}`,
	})
	cachePath := filepath.Join(dir, ".tsprefer-cache")

	res := runCLI(t, "", "--no-cache")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.FileExists(t, cachePath, "--no-cache leaves the file alone")

	res = runCLI(t, "")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.NoFileExists(t, cachePath)
}
