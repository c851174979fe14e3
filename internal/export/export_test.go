package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

func testBook() *types.BookContent {
	return &types.BookContent{
		Title:  "The Lighthouse",
		Author: "A. Keeper",
		Chapters: []types.Chapter{
			{Index: 0, Title: "prologue", Content: "Storm season.\n\n  The lamp was lit.  "},
			{Index: 1, Title: "Chapter 1 Arrival", Content: "# not a heading\nShe climbed the stairs."},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{" JSON ", FormatJSON, false},
		{"pdf", FormatPDF, false},
		{"docx", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMarkdownRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (MarkdownRenderer{}).Render(&buf, testBook()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	expected := "# The Lighthouse\n\n*A. Keeper*\n\n" +
		"## prologue\n\nStorm season.\n\nThe lamp was lit.\n\n" +
		"## Chapter 1 Arrival\n\n\\# not a heading\n\nShe climbed the stairs.\n\n"
	if buf.String() != expected {
		t.Errorf("Unexpected markdown:\n%s", buf.String())
	}
}

func TestJSONRenderer(t *testing.T) {
	r, err := NewRenderer(FormatJSON, Options{})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, testBook()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded types.BookContent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Title != "The Lighthouse" || len(decoded.Chapters) != 2 {
		t.Errorf("Unexpected decoded book %+v", decoded)
	}
	if r.ContentType() != "application/json" {
		t.Errorf("Unexpected content type %q", r.ContentType())
	}
}

func TestPDFRenderer(t *testing.T) {
	r, err := NewRenderer(FormatPDF, Options{})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, testBook()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("Output does not look like a PDF: %q", buf.Bytes()[:8])
	}
}

func TestPDFRenderer_MissingFont(t *testing.T) {
	r := &PDFRenderer{FontPath: "/nonexistent/font.ttf"}
	var buf bytes.Buffer
	if err := r.Render(&buf, testBook()); err == nil {
		t.Error("Expected error for missing font file")
	}
}

func TestFileName(t *testing.T) {
	book := &types.BookContent{Title: "Who/What: A Story?"}
	if got := FileName(book, MarkdownRenderer{}); got != "Who_What_ A Story_.md" {
		t.Errorf("Unexpected file name %q", got)
	}
	if got := FileName(&types.BookContent{}, &PDFRenderer{}); !strings.HasSuffix(got, ".pdf") || got != "book.pdf" {
		t.Errorf("Unexpected fallback file name %q", got)
	}
}
