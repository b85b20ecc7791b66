// Package linter runs the configured rules over parsed source files and
// turns their findings into located diagnostics.
package linter

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"
	"github.com/tsgonest/tsprefer/internal/config"
	"github.com/tsgonest/tsprefer/internal/diagnostic"
	"github.com/tsgonest/tsprefer/internal/fix"
	"github.com/tsgonest/tsprefer/internal/intersection"
	"github.com/tsgonest/tsprefer/internal/lintcache"
	"github.com/tsgonest/tsprefer/internal/rules"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of linting one file.
type FileResult struct {
	File string
	// Text is the content the diagnostics refer to, needed to apply fixes
	// and print code snippets.
	Text        string
	Diagnostics []diagnostic.Diagnostic
	// Cached is true when the file was skipped because the cache recorded
	// this exact content as clean.
	Cached bool
}

type enabledRule struct {
	rule     rules.Rule
	severity diagnostic.Severity
}

// Linter applies a fixed set of rules. It is safe for concurrent use.
type Linter struct {
	rules       []enabledRule
	logger      *zap.Logger
	cache       *lintcache.Cache
	concurrency int
}

// Option configures a Linter.
type Option func(*Linter)

// WithConcurrency bounds the number of files linted at once. Values below
// one mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(l *Linter) {
		l.concurrency = n
	}
}

// New builds a linter from cfg. Rules at severity off are not run. cache
// may be nil.
func New(cfg *config.Config, logger *zap.Logger, cache *lintcache.Cache, opts ...Option) (*Linter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Linter{logger: logger, cache: cache}
	for _, opt := range opts {
		opt(l)
	}
	if l.concurrency < 1 {
		l.concurrency = runtime.GOMAXPROCS(0)
	}

	for _, name := range rules.Names() {
		sev := cfg.Severity(name)
		if sev == diagnostic.SeverityOff {
			logger.Debug("Rule disabled", zap.String("rule", name))
			continue
		}
		rule, err := rules.New(name, cfg.RuleOptions(name))
		if err != nil {
			return nil, fmt.Errorf("building rule %s: %w", name, err)
		}
		l.rules = append(l.rules, enabledRule{rule: rule, severity: sev})
	}
	return l, nil
}

// RuleNames returns the names of the rules that will run.
func (l *Linter) RuleNames() []string {
	names := make([]string, 0, len(l.rules))
	for _, r := range l.rules {
		names = append(names, r.rule.Name())
	}
	return names
}

// LintFile runs every enabled rule on every type alias in sf. Diagnostics
// are ordered by position, then by rule name.
func (l *Linter) LintFile(sf *ast.SourceFile) FileResult {
	src := intersection.NewFileSource(sf)
	result := FileResult{File: sf.FileName(), Text: src.Text()}

	if l.cache.IsClean(result.File, result.Text) {
		result.Cached = true
		return result
	}

	for _, alias := range rules.TypeAliases(sf) {
		for _, r := range l.rules {
			finding := r.rule.Check(alias, src)
			if finding == nil {
				continue
			}
			d := toDiagnostic(sf, finding, r.severity)
			l.logger.Debug("Finding", zap.Stringer("diagnostic", d))
			result.Diagnostics = append(result.Diagnostics, d)
		}
	}

	l.cache.Record(result.File, result.Text, len(result.Diagnostics) == 0)
	return result
}

// LintFiles lints files concurrently and returns the results in input
// order. It stops early only when ctx is cancelled.
func (l *Linter) LintFiles(ctx context.Context, files []*ast.SourceFile) ([]FileResult, error) {
	start := time.Now()
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, sf := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.LintFile(sf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	l.logger.Debug("Linted files",
		zap.Int("files", len(files)),
		zap.Int("cached", cached),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

func toDiagnostic(sf *ast.SourceFile, f *rules.Finding, sev diagnostic.Severity) diagnostic.Diagnostic {
	line, col := shimscanner.GetECMALineAndCharacterOfPosition(sf, f.Pos)
	endLine, endCol := shimscanner.GetECMALineAndCharacterOfPosition(sf, f.End)
	d := diagnostic.Diagnostic{
		Severity:  sev,
		Rule:      f.Rule,
		File:      sf.FileName(),
		Line:      line + 1,
		Column:    col + 1,
		EndLine:   endLine + 1,
		EndColumn: endCol + 1,
		Pos:       f.Pos,
		End:       f.End,
		Message:   f.Message(),
	}
	if f.Fix != nil {
		d.Fix = &fix.Edit{Start: f.Fix.Start, End: f.Fix.End, Text: f.Fix.Text}
	}
	return d
}

// Edits collects the fixes carried by diags.
func Edits(diags []diagnostic.Diagnostic) []fix.Edit {
	var edits []fix.Edit
	for _, d := range diags {
		if d.Fix != nil {
			edits = append(edits, *d.Fix)
		}
	}
	return edits
}
