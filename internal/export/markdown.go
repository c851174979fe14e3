package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// MarkdownRenderer writes the book title as a level one heading, the author
// in italics and every chapter as a level two heading followed by its
// paragraphs
type MarkdownRenderer struct{}

func (MarkdownRenderer) Render(w io.Writer, book *types.BookContent) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("# " + escapeLine(book.Title) + "\n\n")
	if book.Author != "" {
		bw.WriteString("*" + escapeLine(book.Author) + "*\n\n")
	}

	for _, ch := range book.Chapters {
		bw.WriteString("## " + escapeLine(ch.Title) + "\n\n")
		for _, para := range paragraphs(ch.Content) {
			bw.WriteString(escapeLine(para) + "\n\n")
		}
	}

	return bw.Flush()
}

func (MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }

func (MarkdownRenderer) Extension() string { return ".md" }

// paragraphs splits chapter text into trimmed non-empty lines
func paragraphs(content string) []string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// escapeLine keeps text lines from being read as Markdown block syntax
func escapeLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '>', '-', '+', '*', '=':
		return `\` + s
	}
	return s
}
