// Package export writes a parsed book out as Markdown, JSON or PDF.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// Format names an output format
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts "md", "markdown", "json" and "pdf" in any case
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format: %q", s)
}

// Renderer writes a book in one output format
type Renderer interface {
	Render(w io.Writer, book *types.BookContent) error
	ContentType() string
	Extension() string
}

// Options configures the renderers returned by NewRenderer
type Options struct {
	// FontPath is a TrueType font used for PDF output. Without it the PDF
	// renderer falls back to Helvetica, which only covers Latin-1 text.
	FontPath string
}

// NewRenderer returns the renderer for a format
func NewRenderer(format Format, opts Options) (Renderer, error) {
	switch format {
	case FormatMarkdown:
		return MarkdownRenderer{}, nil
	case FormatJSON:
		return JSONRenderer{Indent: "  "}, nil
	case FormatPDF:
		return &PDFRenderer{FontPath: opts.FontPath}, nil
	}
	return nil, fmt.Errorf("unsupported export format: %q", format)
}

// FileName builds a download name for a book in the renderer's format
func FileName(book *types.BookContent, r Renderer) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(book.Title))
	if name == "" {
		name = "book"
	}
	return name + r.Extension()
}

// JSONRenderer writes the book as a JSON document
type JSONRenderer struct {
	Indent string
}

func (r JSONRenderer) Render(w io.Writer, book *types.BookContent) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.Indent != "" {
		enc.SetIndent("", r.Indent)
	}
	return enc.Encode(book)
}

func (JSONRenderer) ContentType() string { return "application/json" }

func (JSONRenderer) Extension() string { return ".json" }
