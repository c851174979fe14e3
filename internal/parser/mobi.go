package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/unalkalkan/NovelReader/internal/segmenter"
	"github.com/unalkalkan/NovelReader/internal/textutil"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// MOBIParser reads MOBI files that are packaged as zip archives of HTML
// documents. Anything it cannot open as an archive is read as plain text.
type MOBIParser struct {
	segmenter segmenter.Options
}

// NewMOBIParser creates a new MOBI parser
func NewMOBIParser() *MOBIParser {
	return &MOBIParser{}
}

// Parse extracts the text of the HTML entries and segments it
func (p *MOBIParser) Parse(ctx context.Context, name string, data []byte) (*types.BookContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := p.archiveText(ctx, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		text = textutil.Decode(data)
	}

	return &types.BookContent{
		Title:    titleFromName(name),
		Author:   UnknownAuthor,
		Chapters: p.segmenter.Segment(text),
	}, nil
}

// archiveText returns "" when data is not a readable archive or holds no text
func (p *MOBIParser) archiveText(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil
	}

	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if isTextEntry(f.Name) {
			files = append(files, f)
		}
	}

	var out strings.Builder
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		raw, err := readZipFile(f)
		if err != nil {
			continue
		}
		text := textutil.HTMLBlockText(textutil.Decode(raw))
		if text == "" {
			continue
		}
		out.WriteString(text)
		out.WriteString("\n\n")
	}
	return out.String(), nil
}

// isTextEntry matches HTML documents and content files, but not package metadata
func isTextEntry(name string) bool {
	lower := strings.ToLower(name)
	switch path.Ext(lower) {
	case ".html", ".htm", ".xhtml":
		return true
	case ".opf", ".ncx":
		return false
	}
	return strings.Contains(path.Base(lower), "content")
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// SupportedFormats returns the formats this parser supports
func (p *MOBIParser) SupportedFormats() []types.FileType {
	return []types.FileType{types.FileTypeMOBI}
}
