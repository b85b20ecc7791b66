package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/spf13/cobra"
	"github.com/tsgonest/tsprefer/internal/compiler"
	"github.com/tsgonest/tsprefer/internal/diagnostic"
	"github.com/tsgonest/tsprefer/internal/fix"
	"github.com/tsgonest/tsprefer/internal/lintcache"
	"github.com/tsgonest/tsprefer/internal/linter"
	"github.com/tsgonest/tsprefer/internal/report"
	"github.com/tsgonest/tsprefer/internal/watcher"
	"go.uber.org/zap"
)

// sourceExtensions are the files watch mode reacts to.
var sourceExtensions = []string{".ts", ".tsx", ".mts", ".cts"}

type lintOptions struct {
	project       string
	configPath    string
	format        string
	fix           bool
	fixDryRun     bool
	strict        bool
	quiet         bool
	noCache       bool
	watch         bool
	stdin         bool
	stdinFilename string
	rules         []string
}

func addLintFlags(cmd *cobra.Command, o *lintOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.project, "project", "p", "tsconfig.json", "Path to tsconfig.json")
	f.StringVar(&o.configPath, "config", "", "Path to tsprefer config file (tsprefer.config.json or .tsprefer.yaml)")
	f.StringVar(&o.format, "format", "", "Output format: stylish, plain or json (default: stylish on a terminal, plain otherwise)")
	f.BoolVar(&o.fix, "fix", false, "Rewrite files with the suggested fixes")
	f.BoolVar(&o.fixDryRun, "fix-dry-run", false, "Print the suggested fixes as a unified diff without writing files")
	f.BoolVar(&o.strict, "strict", false, "Treat warnings as errors")
	f.BoolVar(&o.quiet, "quiet", false, "Report errors only")
	f.BoolVar(&o.noCache, "no-cache", false, "Ignore and do not update the lint cache")
	f.BoolVar(&o.watch, "watch", false, "Lint again whenever a source file changes")
	f.BoolVar(&o.stdin, "stdin", false, "Lint source read from stdin")
	f.StringVar(&o.stdinFilename, "stdin-filename", "", "File name to report for --stdin input (default: stdin.ts)")
	f.StringArrayVar(&o.rules, "rule", nil, "Override a rule severity as name=off|warn|error (repeatable)")
}

func newLintCmd(a *app) *cobra.Command {
	o := &lintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint the files of a TypeScript project",
		Long: `Lints every file listed by the tsconfig, or only those under the given
paths. Files are filtered further by the include and exclude patterns of
the tsprefer config.`,
		Example: `  tsprefer lint
  tsprefer lint -p tsconfig.build.json src/models
  tsprefer lint --fix
  tsprefer lint --rule prefer-merged-type-literal-over-intersection=warn
  cat types.ts | tsprefer lint --stdin --stdin-filename src/types.ts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLint(cmd, args, o)
		},
	}
	addLintFlags(cmd, o)
	return cmd
}

// lintRun is one configured invocation of the lint command.
type lintRun struct {
	opts      *lintOptions
	logger    *zap.Logger
	config    *ConfigResult
	cwd       string
	format    report.Format
	color     bool
	out       io.Writer
	errOut    io.Writer
	cachePath string
}

func (a *app) runLint(cmd *cobra.Command, args []string, o *lintOptions) error {
	if o.fix && o.fixDryRun {
		return failure(errors.New("--fix and --fix-dry-run cannot be combined"))
	}
	if o.stdin && o.watch {
		return failure(errors.New("--stdin and --watch cannot be combined"))
	}
	if o.stdin && len(args) > 0 {
		return failure(errors.New("paths cannot be given with --stdin"))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return failure(fmt.Errorf("could not get working directory: %w", err))
	}

	cfgResult, err := loadOrDiscoverConfig(o.configPath, cwd, a.logger)
	if err != nil {
		return failure(err)
	}
	if cfgResult.Path != "" {
		a.logger.Info("Loaded config", zap.String("path", cfgResult.Path))
	}
	for _, override := range o.rules {
		name, severity, ok := strings.Cut(override, "=")
		if !ok {
			return failure(fmt.Errorf("invalid --rule %q: want name=severity", override))
		}
		if err := cfgResult.Config.SetSeverity(strings.TrimSpace(name), strings.TrimSpace(severity)); err != nil {
			return failure(fmt.Errorf("--rule: %w", err))
		}
	}

	pretty := false
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		pretty = report.IsPrettyOutput(f)
	}
	format := report.FormatPlain
	if pretty {
		format = report.FormatStylish
	}
	if o.format != "" {
		if format, err = report.ParseFormat(o.format); err != nil {
			return failure(err)
		}
	}

	r := &lintRun{
		opts:   o,
		logger: a.logger,
		config: cfgResult,
		cwd:    cwd,
		format: format,
		color:  pretty,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}

	ctx := cmd.Context()
	switch {
	case o.stdin:
		return r.lintStdin(cmd.InOrStdin())
	case o.watch:
		return r.watch(ctx, args)
	default:
		return r.lintProject(ctx, args)
	}
}

// lintProject lints the tsconfig's files once and reports the results.
func (r *lintRun) lintProject(ctx context.Context, paths []string) error {
	start := time.Now()

	fs := compiler.CreateDefaultFS()
	host := compiler.CreateDefaultHost(r.cwd, fs)
	result, diags, err := compiler.CreateProgram(false, fs, r.cwd, r.opts.project, host)
	if err != nil {
		return failure(err)
	}
	if len(diags) > 0 {
		r.reporter(r.errOut).WriteCompilerDiagnostics(diags)
		return &exitError{code: exitFailure}
	}

	files := r.selectFiles(compiler.ProjectFiles(result), paths)
	syntaxDiags := compiler.SyntaxErrors(result.Program)
	broken := compiler.FilesWithSyntaxErrors(syntaxDiags)
	lintable := make([]*ast.SourceFile, 0, len(files))
	for _, sf := range files {
		if !broken[sf.FileName()] {
			lintable = append(lintable, sf)
		}
	}
	syntaxErrors := forFiles(compiler.ConvertDiagnostics(syntaxDiags), files)
	if len(syntaxErrors) > 0 {
		r.reporter(r.errOut).WriteCompilerDiagnostics(syntaxErrors)
	}
	r.logger.Debug("Selected files",
		zap.Int("project", len(result.ParsedConfig.FileNames())),
		zap.Int("lint", len(lintable)),
		zap.Int("syntaxErrors", len(files)-len(lintable)))

	cache := r.openCache()
	l, err := linter.New(r.config.Config, r.logger, cache)
	if err != nil {
		return failure(err)
	}
	results, err := l.LintFiles(ctx, lintable)
	if err != nil {
		return failure(err)
	}

	switch {
	case r.opts.fix:
		if results, err = r.applyFixes(l, results); err != nil {
			return err
		}
	case r.opts.fixDryRun:
		r.printDiffs(results)
	}
	r.saveCache(cache)

	r.logger.Debug("Lint finished", zap.Duration("elapsed", time.Since(start)))

	err = r.report(r.out, results)
	if len(syntaxErrors) > 0 && (err == nil || err == errProblems) {
		return &exitError{code: exitFailure}
	}
	return err
}

// lintStdin lints a single document read from in. With --fix the fixed
// source goes to stdout and the remaining problems to stderr.
func (r *lintRun) lintStdin(in io.Reader) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return failure(fmt.Errorf("reading stdin: %w", err))
	}

	name := r.opts.stdinFilename
	if name == "" {
		name = "stdin.ts"
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(r.cwd, name)
	}
	name = filepath.ToSlash(name)

	sf, diags, err := compiler.ParseSource(name, string(data))
	if err != nil {
		return failure(err)
	}
	if len(diags) > 0 {
		r.reporter(r.errOut).WriteCompilerDiagnostics(diags)
		return &exitError{code: exitFailure}
	}

	l, err := linter.New(r.config.Config, r.logger, nil)
	if err != nil {
		return failure(err)
	}
	results := []linter.FileResult{l.LintFile(sf)}

	switch {
	case r.opts.fix:
		fixed, _ := fix.Apply(results[0].Text, linter.Edits(results[0].Diagnostics))
		fmt.Fprint(r.out, fixed)
		if sf, _, err := compiler.ParseSource(name, fixed); err == nil && sf != nil {
			results[0] = l.LintFile(sf)
		}
		return r.report(r.errOut, results)
	case r.opts.fixDryRun:
		r.printDiffs(results)
	}
	return r.report(r.out, results)
}

// watch lints once, then again after every batch of source changes until
// interrupted.
func (r *lintRun) watch(ctx context.Context, paths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.lintAndLog(ctx, paths)

	w := watcher.New([]string{r.config.Dir}, sourceExtensions, watcher.DefaultDebounce, func(events []watcher.Event) {
		fmt.Fprintf(r.errOut, "\ndetected %d change(s), linting...\n", len(events))
		r.lintAndLog(ctx, paths)
	})
	w.SetLogger(r.logger)

	fmt.Fprintf(r.errOut, "watching %s for changes...\n", r.config.Dir)
	if err := w.Watch(ctx); err != nil {
		return failure(err)
	}
	fmt.Fprintln(r.errOut, "\nshutting down...")
	return nil
}

func (r *lintRun) lintAndLog(ctx context.Context, paths []string) {
	err := r.lintProject(ctx, paths)
	var ee *exitError
	if errors.As(err, &ee) && ee.err != nil {
		fmt.Fprintf(r.errOut, "error: %v\n", ee.err)
	}
}

// selectFiles keeps the files passing the config's include and exclude
// patterns and, when paths are given, lying under one of them.
func (r *lintRun) selectFiles(files []*ast.SourceFile, paths []string) []*ast.SourceFile {
	targets := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(r.cwd, p)
		}
		targets = append(targets, filepath.ToSlash(filepath.Clean(p)))
	}

	var selected []*ast.SourceFile
	for _, sf := range files {
		name := sf.FileName()
		if !r.matchesConfig(name) {
			continue
		}
		if len(targets) > 0 && !slices.ContainsFunc(targets, func(t string) bool {
			return name == t || strings.HasPrefix(name, strings.TrimSuffix(t, "/")+"/")
		}) {
			continue
		}
		selected = append(selected, sf)
	}
	return selected
}

func (r *lintRun) matchesConfig(fileName string) bool {
	rel, err := filepath.Rel(r.config.Dir, filepath.FromSlash(fileName))
	if err != nil {
		return true
	}
	return r.config.Config.Matches(filepath.ToSlash(rel))
}

// applyFixes writes every file that has fixes and lints the new content so
// only the problems left over are reported.
func (r *lintRun) applyFixes(l *linter.Linter, results []linter.FileResult) ([]linter.FileResult, error) {
	total := 0
	for i, res := range results {
		edits := linter.Edits(res.Diagnostics)
		if len(edits) == 0 {
			continue
		}
		fixed, applied := fix.Apply(res.Text, edits)
		if applied == 0 {
			continue
		}

		path := filepath.FromSlash(res.File)
		if err := fix.WriteFile(path, fixed, fix.HasByteOrderMark(path)); err != nil {
			return nil, failure(fmt.Errorf("writing fixes to %s: %w", path, err))
		}
		total += applied
		r.logger.Info("Applied fixes", zap.String("file", path), zap.Int("fixes", applied))

		sf, diags, err := compiler.ParseSource(res.File, fixed)
		if len(diags) > 0 {
			r.logger.Warn("Fixed file has syntax errors", zap.String("file", path), zap.Stringers("diagnostics", diags))
		}
		if err != nil || sf == nil {
			r.logger.Warn("Could not re-lint fixed file", zap.String("file", path), zap.Error(err))
			results[i] = linter.FileResult{File: res.File, Text: fixed}
			continue
		}
		results[i] = l.LintFile(sf)
	}
	if total > 0 {
		fmt.Fprintf(r.errOut, "fixed %d problem(s)\n", total)
	}
	return results, nil
}

func (r *lintRun) printDiffs(results []linter.FileResult) {
	for _, res := range results {
		fixed, applied := fix.Apply(res.Text, linter.Edits(res.Diagnostics))
		if applied == 0 {
			continue
		}
		fmt.Fprint(r.out, fix.UnifiedDiff(r.relativePath(res.File), res.Text, fixed))
	}
}

func (r *lintRun) report(w io.Writer, results []linter.FileResult) error {
	c := diagnostic.NewCollector(r.opts.strict, r.opts.quiet)
	texts := make(map[string]string)
	for _, res := range results {
		for _, d := range res.Diagnostics {
			c.Add(d)
		}
		if len(res.Diagnostics) > 0 {
			texts[res.File] = res.Text
		}
	}

	if err := r.reporter(w).Write(c, texts); err != nil {
		return failure(fmt.Errorf("writing report: %w", err))
	}
	if c.HasErrors() {
		return errProblems
	}
	return nil
}

func (r *lintRun) reporter(w io.Writer) *report.Reporter {
	return report.New(w, r.format, r.cwd, r.color)
}

// openCache returns nil when caching is off. A cache disabled in the config
// is also removed from disk, while --no-cache leaves the file alone.
func (r *lintRun) openCache() *lintcache.Cache {
	if r.opts.noCache {
		return nil
	}
	r.cachePath = lintcache.CachePath(r.config.Config.Cache.Path, r.config.Path, r.cwd)
	if !r.config.Config.Cache.Enabled {
		lintcache.Delete(r.cachePath)
		return nil
	}
	cache := lintcache.Open(r.cachePath, r.config.Config.Hash())
	r.logger.Debug("Opened lint cache", zap.String("path", r.cachePath), zap.Int("clean", cache.Len()))
	return cache
}

func (r *lintRun) saveCache(cache *lintcache.Cache) {
	if cache == nil {
		return
	}
	if err := lintcache.Save(r.cachePath, cache); err != nil {
		r.logger.Warn("Failed to save lint cache", zap.String("path", r.cachePath), zap.Error(err))
	}
}

func (r *lintRun) relativePath(fileName string) string {
	rel, err := filepath.Rel(r.cwd, filepath.FromSlash(fileName))
	if err != nil || strings.HasPrefix(rel, "..") {
		return fileName
	}
	return filepath.ToSlash(rel)
}

// forFiles drops diagnostics for files outside the selection.
func forFiles(diags []compiler.Diagnostic, files []*ast.SourceFile) []compiler.Diagnostic {
	selected := make(map[string]bool, len(files))
	for _, sf := range files {
		selected[sf.FileName()] = true
	}
	var out []compiler.Diagnostic
	for _, d := range diags {
		if selected[d.FilePath] {
			out = append(out, d)
		}
	}
	return out
}
