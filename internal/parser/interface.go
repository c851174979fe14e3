// Package parser turns imported book files into titled chapters.
package parser

import (
	"context"
	"errors"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// ErrUnsupportedFormat is returned by the factory for unknown file types
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnknownAuthor is reported when a file carries no author metadata
const UnknownAuthor = "unknown"

// Parser defines the interface for document parsers
type Parser interface {
	// Parse extracts the book title, author and chapters from the file
	// contents. name is the original file name and serves as the title when
	// the format has no metadata.
	Parse(ctx context.Context, name string, data []byte) (*types.BookContent, error)

	// SupportedFormats returns the file types this parser supports
	SupportedFormats() []types.FileType
}

// Factory creates parsers for different formats
type Factory interface {
	// GetParser returns a parser for the given file type
	GetParser(format types.FileType) (Parser, error)
}
