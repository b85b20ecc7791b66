package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/tsgonest/tsprefer/internal/diagnostic"
)

type palette struct {
	file   func(a ...any) string
	number func(a ...any) string
	err    func(a ...any) string
	warn   func(a ...any) string
	grey   func(a ...any) string
	gutter func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		file:   mk(color.FgHiCyan),
		number: mk(color.FgHiYellow),
		err:    mk(color.FgHiRed),
		warn:   mk(color.FgHiYellow),
		grey:   mk(color.FgHiBlack),
		gutter: mk(color.ReverseVideo),
	}
}

func (p palette) severity(s diagnostic.Severity) func(a ...any) string {
	if s == diagnostic.SeverityError {
		return p.err
	}
	return p.warn
}

// writeStylish writes a diagnostic in tsc's pretty format:
// file:line:col - error rule-name: message
// <code snippet with squiggles>
func (r *Reporter) writeStylish(d diagnostic.Diagnostic, text string) {
	c := r.colors
	fmt.Fprintf(r.w, "%s:%s:%s - %s %s %s\n",
		c.file(r.relativePath(d.File)),
		c.number(d.Line), c.number(d.Column),
		c.severity(d.Severity)(d.Severity.String()),
		c.grey(d.Rule+":"),
		d.Message)

	if text != "" && d.Line > 0 {
		fmt.Fprint(r.w, "\n")
		r.writeCodeSnippet(text, d)
		fmt.Fprint(r.w, "\n")
	}
}

// writeCodeSnippet writes the source lines of d with gutter line numbers and
// squiggles. Ranges longer than five lines are elided in the middle.
func (r *Reporter) writeCodeSnippet(text string, d diagnostic.Diagnostic) {
	c := r.colors
	squiggle := c.severity(d.Severity)
	lines := strings.Split(text, "\n")

	firstLine, firstLineChar := d.Line-1, d.Column-1
	lastLine, lastLineChar := d.EndLine-1, d.EndColumn-1
	if lastLine < firstLine {
		lastLine, lastLineChar = firstLine, firstLineChar+1
	}
	lastLine = min(lastLine, len(lines)-1)

	hasMoreThanFiveLines := lastLine-firstLine >= 4
	gutterWidth := len(strconv.Itoa(lastLine + 1))
	if hasMoreThanFiveLines && len("...") > gutterWidth {
		gutterWidth = len("...")
	}

	for i := firstLine; i <= lastLine; i++ {
		if hasMoreThanFiveLines && firstLine+1 < i && i < lastLine-1 {
			fmt.Fprintf(r.w, "%s\n", c.gutter(fmt.Sprintf("%*s", gutterWidth, "...")))
			i = lastLine - 1
		}

		lineContent := strings.TrimRightFunc(lines[i], unicode.IsSpace)
		lineContent = strings.ReplaceAll(lineContent, "\t", " ")

		fmt.Fprintf(r.w, "%s %s\n", c.gutter(fmt.Sprintf("%*d", gutterWidth, i+1)), lineContent)

		var marks string
		switch i {
		case firstLine:
			lastCharForLine := lastLineChar
			if i != lastLine {
				lastCharForLine = len(lineContent)
			}
			marks = strings.Repeat(" ", max(firstLineChar, 0)) +
				strings.Repeat("~", max(lastCharForLine-firstLineChar, 1))
		case lastLine:
			marks = strings.Repeat("~", max(lastLineChar, 0))
		default:
			marks = strings.Repeat("~", len(lineContent))
		}
		fmt.Fprintf(r.w, "%s %s\n", c.gutter(fmt.Sprintf("%*s", gutterWidth, "")), squiggle(marks))
	}
}
