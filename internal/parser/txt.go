package parser

import (
	"context"

	"github.com/unalkalkan/NovelReader/internal/segmenter"
	"github.com/unalkalkan/NovelReader/internal/textutil"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// TXTParser parses plain text files in any of the normalizer's encodings
type TXTParser struct {
	segmenter segmenter.Options
}

// NewTXTParser creates a new TXT parser
func NewTXTParser() *TXTParser {
	return &TXTParser{}
}

// Parse decodes the file and splits it on chapter headings. The title is
// the file name without extension.
func (p *TXTParser) Parse(ctx context.Context, name string, data []byte) (*types.BookContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := textutil.Decode(data)
	return &types.BookContent{
		Title:    titleFromName(name),
		Author:   UnknownAuthor,
		Chapters: p.segmenter.Segment(text),
	}, nil
}

// SupportedFormats returns the formats this parser supports
func (p *TXTParser) SupportedFormats() []types.FileType {
	return []types.FileType{types.FileTypeTXT}
}
