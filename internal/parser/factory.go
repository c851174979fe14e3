package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// DefaultFactory creates parsers for supported formats
type DefaultFactory struct {
	parsers map[types.FileType]Parser
}

// NewFactory creates a new parser factory with default parsers
func NewFactory() Factory {
	f := &DefaultFactory{
		parsers: make(map[types.FileType]Parser),
	}

	f.registerParser(NewTXTParser())
	f.registerParser(NewEPUBParser())
	f.registerParser(NewMOBIParser())

	return f
}

// registerParser registers a parser for its supported formats
func (f *DefaultFactory) registerParser(p Parser) {
	for _, format := range p.SupportedFormats() {
		f.parsers[format] = p
	}
}

// GetParser returns a parser for the given format
func (f *DefaultFactory) GetParser(format types.FileType) (Parser, error) {
	parser, ok := f.parsers[types.FileType(strings.ToLower(string(format)))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return parser, nil
}

// ParseFile picks a parser by the file name's extension and runs it
func ParseFile(ctx context.Context, f Factory, name string, data []byte) (*types.BookContent, error) {
	format, err := types.FileTypeFromName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	p, err := f.GetParser(format)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, name, data)
}

// titleFromName strips directories and the extension from a file name
func titleFromName(name string) string {
	base := filepath.Base(name)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" || title == "." {
		return "untitled"
	}
	return title
}
