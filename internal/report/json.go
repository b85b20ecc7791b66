package report

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tsgonest/tsprefer/internal/diagnostic"
)

// fileReport is one entry of the JSON output, shaped like eslint's JSON
// formatter so existing tooling can read it.
type fileReport struct {
	FilePath     string          `json:"filePath"`
	Messages     []messageReport `json:"messages"`
	ErrorCount   int             `json:"errorCount"`
	WarningCount int             `json:"warningCount"`
	FixableCount int             `json:"fixableCount"`
}

type messageReport struct {
	RuleID    string     `json:"ruleId"`
	Severity  int        `json:"severity"` // 1 = warning, 2 = error
	Message   string     `json:"message"`
	Line      int        `json:"line"`
	Column    int        `json:"column"`
	EndLine   int        `json:"endLine"`
	EndColumn int        `json:"endColumn"`
	Fix       *fixReport `json:"fix,omitempty"`
}

type fixReport struct {
	Range [2]int `json:"range"`
	Text  string `json:"text"`
}

func (r *Reporter) writeJSON(diags []diagnostic.Diagnostic) error {
	files := make([]fileReport, 0)
	index := make(map[string]int)
	for _, d := range diags {
		i, ok := index[d.File]
		if !ok {
			i = len(files)
			index[d.File] = i
			files = append(files, fileReport{FilePath: d.File, Messages: []messageReport{}})
		}
		f := &files[i]

		m := messageReport{
			RuleID:    d.Rule,
			Severity:  1,
			Message:   d.Message,
			Line:      d.Line,
			Column:    d.Column,
			EndLine:   d.EndLine,
			EndColumn: d.EndColumn,
		}
		if d.Severity == diagnostic.SeverityError {
			m.Severity = 2
			f.ErrorCount++
		} else {
			f.WarningCount++
		}
		if d.Fix != nil {
			m.Fix = &fixReport{Range: [2]int{d.Fix.Start, d.Fix.End}, Text: d.Fix.Text}
			f.FixableCount++
		}
		f.Messages = append(f.Messages, m)
	}

	if err := json.MarshalWrite(r.w, files, jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := r.w.Write([]byte("\n"))
	return err
}
