// Package report renders lint diagnostics for terminals and tools.
package report

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tsgonest/tsprefer/internal/compiler"
	"github.com/tsgonest/tsprefer/internal/diagnostic"
)

// Format selects the output style.
type Format string

const (
	FormatStylish Format = "stylish"
	FormatPlain   Format = "plain"
	FormatJSON    Format = "json"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatStylish, FormatPlain, FormatJSON}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if slices.Contains(Formats, f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q: want stylish, plain or json", s)
}

// IsPrettyOutput determines if we should use colored output.
// NO_COLOR and FORCE_COLOR win over terminal detection.
func IsPrettyOutput(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Reporter writes diagnostics in one format.
type Reporter struct {
	w      io.Writer
	format Format
	cwd    string
	colors palette
}

// New creates a reporter. File names are printed relative to cwd when
// possible. color only affects the stylish format.
func New(w io.Writer, format Format, cwd string, color bool) *Reporter {
	return &Reporter{
		w:      w,
		format: format,
		cwd:    cwd,
		colors: newPalette(color && format == FormatStylish),
	}
}

// Write renders every diagnostic held by c. texts maps file paths to their
// content and is used for code snippets; files missing from it are printed
// without one.
func (r *Reporter) Write(c *diagnostic.Collector, texts map[string]string) error {
	diags := sortDiagnostics(c.Diagnostics())
	switch r.format {
	case FormatJSON:
		return r.writeJSON(diags)
	case FormatPlain:
		for _, d := range diags {
			r.writePlain(d)
		}
		return nil
	default:
		for _, d := range diags {
			r.writeStylish(d, texts[d.File])
		}
		r.writeSummary(c)
		return nil
	}
}

// WriteCompilerDiagnostics prints tsconfig and syntax errors reported by
// the compiler front end, which block linting of the affected files.
func (r *Reporter) WriteCompilerDiagnostics(diags []compiler.Diagnostic) {
	for _, d := range diags {
		if d.FilePath != "" {
			fmt.Fprintf(r.w, "%s: %s %s\n", r.colors.file(r.relativePath(d.FilePath)), r.colors.err("error"), d.Message)
			continue
		}
		fmt.Fprintf(r.w, "%s %s\n", r.colors.err("error"), d.Message)
	}
}

// writePlain writes a diagnostic in tsc plain format:
// file(line,col): error rule-name: message
func (r *Reporter) writePlain(d diagnostic.Diagnostic) {
	fmt.Fprintf(r.w, "%s(%d,%d): %s %s: %s\n",
		r.relativePath(d.File), d.Line, d.Column, d.Severity, d.Rule, d.Message)
}

func (r *Reporter) writeSummary(c *diagnostic.Collector) {
	total := c.ErrorCount() + c.WarningCount()
	if total == 0 {
		return
	}
	fmt.Fprint(r.w, "\n")
	summary := c.Summary()
	if c.ErrorCount() > 0 {
		summary = r.colors.err(summary)
	} else {
		summary = r.colors.warn(summary)
	}
	fmt.Fprintln(r.w, summary)
	if fixable := c.FixableCount(); fixable > 0 {
		fmt.Fprintf(r.w, "%s\n", r.colors.grey(fmt.Sprintf("%d fixable with the --fix option.", fixable)))
	}
}

// relativePath converts an absolute path to relative if possible.
func (r *Reporter) relativePath(absPath string) string {
	if r.cwd == "" {
		return absPath
	}
	rel, err := filepath.Rel(r.cwd, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return absPath
	}
	return filepath.ToSlash(rel)
}

// sortDiagnostics groups diagnostics by file, files in the order they were
// first seen, and sorts each file's diagnostics by position.
func sortDiagnostics(diags []diagnostic.Diagnostic) []diagnostic.Diagnostic {
	fileOrder := make(map[string]int)
	for _, d := range diags {
		if _, ok := fileOrder[d.File]; !ok {
			fileOrder[d.File] = len(fileOrder)
		}
	}
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b diagnostic.Diagnostic) int {
		if c := cmp.Compare(fileOrder[a.File], fileOrder[b.File]); c != 0 {
			return c
		}
		return cmp.Compare(a.Pos, b.Pos)
	})
	return sorted
}
