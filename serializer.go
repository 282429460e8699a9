package files2prompt

import (
	"fmt"
	"io"
)

// Format selects the output document format.
type Format int

const (
	// FormatPlain renders each document as "path\n---\ncontent\n---\n".
	FormatPlain Format = iota
	// FormatClaudeXML renders the run as a <documents> envelope with one
	// <document index="..."> element per file.
	FormatClaudeXML
)

const (
	xmlOpen  = "<documents>\n"
	xmlClose = "</documents>\n"
)

// Serializer renders admitted (path, content) pairs into the output sink and
// owns the run-wide document index. The index starts at 1, increments by one
// per emitted document, and is never reset between roots.
//
// Content and paths are written verbatim: XML mode does not escape <, &, or
// other special characters. Downstream consumers of the claude-xml format
// expect the raw bytes.
type Serializer struct {
	w      io.Writer
	format Format
	index  int
}

// NewSerializer creates a Serializer writing to w in the given format.
func NewSerializer(w io.Writer, format Format) *Serializer {
	return &Serializer{w: w, format: format}
}

// Begin writes the run prologue. In XML mode this is the <documents> opening
// tag, emitted exactly once even when the run produces no documents.
func (s *Serializer) Begin() error {
	if s.format != FormatClaudeXML {
		return nil
	}
	_, err := io.WriteString(s.w, xmlOpen)
	return err
}

// Emit renders one document and advances the document index.
func (s *Serializer) Emit(path string, content []byte) error {
	if s.format == FormatClaudeXML {
		s.index++
		_, err := fmt.Fprintf(s.w,
			"<document index=\"%d\">\n<source>%s</source>\n<document_content>\n%s\n</document_content>\n</document>\n",
			s.index, path, content)
		return err
	}

	s.index++
	_, err := fmt.Fprintf(s.w, "%s\n---\n%s\n---\n", path, content)
	return err
}

// End writes the run epilogue. In XML mode this is the </documents> closing
// tag, emitted regardless of how many documents were produced.
func (s *Serializer) End() error {
	if s.format != FormatClaudeXML {
		return nil
	}
	_, err := io.WriteString(s.w, xmlClose)
	return err
}

// Count returns the number of documents emitted so far.
func (s *Serializer) Count() int {
	return s.index
}
