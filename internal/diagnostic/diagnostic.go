package diagnostic

import (
	"fmt"
	"strings"

	"github.com/tsgonest/tsprefer/internal/fix"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityOff Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity accepts the config spellings "off", "warn", "warning" and
// "error" (case-sensitive, like eslint).
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "off":
		return SeverityOff, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return SeverityOff, fmt.Errorf("invalid severity %q: want off, warn or error", s)
}

// Diagnostic is one rule violation located in a file.
type Diagnostic struct {
	Severity  Severity
	Rule      string
	File      string // source file path
	Line      int    // 1-based line number (0 = unknown)
	Column    int    // 1-based column number (0 = unknown)
	EndLine   int
	EndColumn int
	Pos       int // byte offset of the reported range
	End       int
	Message   string

	// Fix is nil when the rule offers no fix.
	Fix *fix.Edit
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	var sb strings.Builder

	if d.File != "" {
		sb.WriteString(d.File)
		if d.Line > 0 {
			sb.WriteString(fmt.Sprintf(":%d", d.Line))
			if d.Column > 0 {
				sb.WriteString(fmt.Sprintf(":%d", d.Column))
			}
		}
		sb.WriteString(" - ")
	}

	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	sb.WriteString(d.Message)

	if d.Rule != "" {
		sb.WriteString(" [")
		sb.WriteString(d.Rule)
		sb.WriteString("]")
	}

	return sb.String()
}

// Collector collects diagnostics during a lint run.
type Collector struct {
	diagnostics []Diagnostic
	strict      bool // if true, warnings become errors
	quiet       bool // if true, suppress warnings
}

// NewCollector creates a new diagnostic collector.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{
		strict: strict,
		quiet:  quiet,
	}
}

// Add records d, applying strict and quiet mode. Diagnostics at
// SeverityOff are dropped.
func (c *Collector) Add(d Diagnostic) {
	if c == nil || d.Severity == SeverityOff {
		return
	}
	if d.Severity == SeverityWarning {
		if c.quiet {
			return
		}
		if c.strict {
			d.Severity = SeverityError
		}
	}
	c.diagnostics = append(c.diagnostics, d)
}

// Diagnostics returns all collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diagnostics
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool {
	return c.ErrorCount() > 0
}

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int {
	return c.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int {
	return c.count(SeverityWarning)
}

// FixableCount returns the number of diagnostics that carry a fix.
func (c *Collector) FixableCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.diagnostics {
		if d.Fix != nil {
			n++
		}
	}
	return n
}

func (c *Collector) count(sev Severity) int {
	if c == nil {
		return 0
	}
	count := 0
	for _, d := range c.diagnostics {
		if d.Severity == sev {
			count++
		}
	}
	return count
}

const summaryKey = "%d problems (%d errors, %d warnings)"

func init() {
	message.Set(language.English, summaryKey,
		catalog.Var("problems", plural.Selectf(1, "%d", plural.One, "problem", plural.Other, "problems")),
		catalog.Var("errors", plural.Selectf(2, "%d", plural.One, "error", plural.Other, "errors")),
		catalog.Var("warnings", plural.Selectf(3, "%d", plural.One, "warning", plural.Other, "warnings")),
		catalog.String("%[1]d ${problems} (%[2]d ${errors}, %[3]d ${warnings})"),
	)
}

var printer = message.NewPrinter(language.English)

// Summary returns a summary line like "3 problems (1 error, 2 warnings)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	errs := c.ErrorCount()
	warnings := c.WarningCount()
	total := errs + warnings
	if total == 0 {
		return "no problems"
	}
	return printer.Sprintf(summaryKey, total, errs, warnings)
}
