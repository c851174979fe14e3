package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileType identifies the container format of a locally imported book
type FileType string

const (
	FileTypeTXT  FileType = "txt"
	FileTypeEPUB FileType = "epub"
	FileTypeMOBI FileType = "mobi"
)

// FileTypes lists every supported local format
func FileTypes() []FileType {
	return []FileType{FileTypeTXT, FileTypeEPUB, FileTypeMOBI}
}

// ParseFileType converts a format name ("txt", "EPUB", ".mobi") into a FileType
func ParseFileType(s string) (FileType, error) {
	ft := FileType(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, known := range FileTypes() {
		if ft == known {
			return ft, nil
		}
	}
	return "", fmt.Errorf("unsupported file type: %q", s)
}

// FileTypeFromName derives the FileType from a file name's extension
func FileTypeFromName(name string) (FileType, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("file %q has no extension", name)
	}
	return ParseFileType(ext)
}

// Book represents a book on the shelf, either imported from a file or added from an online source
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	FilePath      string    `json:"file_path,omitempty"`
	FileType      FileType  `json:"file_type,omitempty"`
	CoverPath     string    `json:"cover_path,omitempty"`
	TotalChapters int       `json:"total_chapters"`
	AddedAt       time.Time `json:"added_at"`
	LastReadAt    time.Time `json:"last_read_at"`
	IsOnline      bool      `json:"is_online"`
}

// Chapter is one segmented unit of book text
type Chapter struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// BookContent is the result of parsing a book: metadata plus at least one chapter
type BookContent struct {
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Chapters []Chapter `json:"chapters"`
}

// ReadingProgress tracks where the reader stopped in a book
type ReadingProgress struct {
	BookID         string    `json:"book_id"`
	CurrentChapter int       `json:"current_chapter"`
	CurrentPage    int       `json:"current_page"`
	Progress       float64   `json:"progress"` // 0-1
	UpdatedAt      time.Time `json:"updated_at"`
}

// CachedChapter is a chapter stored locally, keyed by (BookID, Index)
type CachedChapter struct {
	BookID   string    `json:"book_id"`
	Index    int       `json:"index"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	CachedAt time.Time `json:"cached_at"`
}

// Chapter converts the cache entry back into a plain chapter
func (c CachedChapter) Chapter() Chapter {
	return Chapter{Index: c.Index, Title: c.Title, Content: c.Content}
}

// OnlineBook is a book the user added to the shelf from an online source
type OnlineBook struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"source_id"`
	BookURL     string    `json:"book_url"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}
