package intersection

import (
	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"
)

// Source gives read access to the text a syntax tree was parsed from.
// Node positions from tsgo include leading trivia, so callers go through
// NodeStart/NodeText instead of slicing with node.Pos() directly.
type Source interface {
	// Text returns the full document text.
	Text() string
	// NodeStart returns the offset of the node's first token.
	NodeStart(node *ast.Node) int
	// NodeText returns the exact text of the node, without leading trivia.
	NodeText(node *ast.Node) string
}

// FileSource is a Source backed by a parsed tsgo source file.
type FileSource struct {
	file *ast.SourceFile
	text string
}

var _ Source = (*FileSource)(nil)

// NewFileSource wraps a parsed source file.
func NewFileSource(file *ast.SourceFile) *FileSource {
	return &FileSource{file: file, text: file.Text()}
}

// File returns the underlying source file.
func (s *FileSource) File() *ast.SourceFile {
	return s.file
}

func (s *FileSource) Text() string {
	return s.text
}

func (s *FileSource) NodeStart(node *ast.Node) int {
	return SkipTrivia(s.text, node.Pos())
}

func (s *FileSource) NodeText(node *ast.Node) string {
	start := s.NodeStart(node)
	end := node.End()
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// SkipTrivia returns the first offset at or after pos that is not whitespace
// or a comment. Offsets past the end of text are clamped.
func SkipTrivia(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	return shimscanner.SkipTrivia(text, pos)
}
