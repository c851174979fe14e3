// Package library persists the reader's state: the book shelf, parsed
// chapters, reading progress, source configurations, online books and the
// chapter cache. Every record is a JSON document in a storage.Adapter.
package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/unalkalkan/NovelReader/internal/storage"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// Repository handles persistence of everything the reader keeps between sessions
type Repository interface {
	// SaveBook stores book metadata
	SaveBook(ctx context.Context, book *types.Book) error
	// GetBook retrieves book metadata by ID
	GetBook(ctx context.Context, bookID string) (*types.Book, error)
	// ListBooks returns the shelf, most recently read first
	ListBooks(ctx context.Context) ([]*types.Book, error)
	// DeleteBook removes a book with its chapters, raw file, progress and cache
	DeleteBook(ctx context.Context, bookID string) error

	// SaveChapters stores the parsed chapters of a book
	SaveChapters(ctx context.Context, bookID string, chapters []types.Chapter) error
	// GetChapter retrieves one parsed chapter
	GetChapter(ctx context.Context, bookID string, index int) (*types.Chapter, error)

	// SaveRawFile stores the imported file as uploaded
	SaveRawFile(ctx context.Context, bookID string, data []byte, format types.FileType) error
	// GetRawFile retrieves the imported file
	GetRawFile(ctx context.Context, bookID string, format types.FileType) ([]byte, error)

	// SaveProgress stores the reading position of a book
	SaveProgress(ctx context.Context, progress *types.ReadingProgress) error
	// GetProgress retrieves the reading position of a book
	GetProgress(ctx context.Context, bookID string) (*types.ReadingProgress, error)
	// DeleteProgress forgets the reading position of a book
	DeleteProgress(ctx context.Context, bookID string) error

	// SaveSource stores a source configuration
	SaveSource(ctx context.Context, source *types.SourceConfig) error
	// GetSource retrieves a source by ID
	GetSource(ctx context.Context, sourceID string) (*types.SourceConfig, error)
	// ListSources returns all sources ordered by name
	ListSources(ctx context.Context) ([]types.SourceConfig, error)
	// ListEnabledSources returns enabled sources ordered by name
	ListEnabledSources(ctx context.Context) ([]types.SourceConfig, error)
	// SetSourceEnabled toggles a source
	SetSourceEnabled(ctx context.Context, sourceID string, enabled bool) error
	// DeleteSource removes a source
	DeleteSource(ctx context.Context, sourceID string) error
	// SeedSources stores defaults when no source exists yet and reports whether it did
	SeedSources(ctx context.Context, defaults []types.SourceConfig) (bool, error)

	// SaveOnlineBook stores a book added from a source
	SaveOnlineBook(ctx context.Context, book *types.OnlineBook) error
	// GetOnlineBook retrieves an online book by ID
	GetOnlineBook(ctx context.Context, bookID string) (*types.OnlineBook, error)
	// ListOnlineBooks returns online books, most recently added first
	ListOnlineBooks(ctx context.Context) ([]*types.OnlineBook, error)
	// DeleteOnlineBook removes an online book and its cached chapters
	DeleteOnlineBook(ctx context.Context, bookID string) error

	// SaveCachedChapter stores a fetched chapter
	SaveCachedChapter(ctx context.Context, chapter *types.CachedChapter) error
	// GetCachedChapter retrieves a cached chapter by book and index
	GetCachedChapter(ctx context.Context, bookID string, index int) (*types.CachedChapter, error)
	// ListCachedChapters returns a book's cached chapters ordered by index
	ListCachedChapters(ctx context.Context, bookID string) ([]*types.CachedChapter, error)
	// CachedChapterIndices returns the indices cached for a book, ascending
	CachedChapterIndices(ctx context.Context, bookID string) ([]int, error)
	// ClearCache removes all cached chapters of a book
	ClearCache(ctx context.Context, bookID string) error
	// DeleteOldestCached removes up to limit cached chapters with the lowest indices
	DeleteOldestCached(ctx context.Context, bookID string, limit int) (int, error)
}

// StorageRepository implements Repository using a storage adapter
type StorageRepository struct {
	storage storage.Adapter
}

var _ Repository = (*StorageRepository)(nil)

// NewRepository creates a new library repository
func NewRepository(storageAdapter storage.Adapter) *StorageRepository {
	return &StorageRepository{
		storage: storageAdapter,
	}
}

func (r *StorageRepository) putJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return r.storage.Put(ctx, key, bytes.NewReader(data))
}

// getJSON decodes the document at key. Missing documents wrap storage.ErrNotFound.
func (r *StorageRepository) getJSON(ctx context.Context, key string, v interface{}) error {
	reader, err := r.storage.Get(ctx, key)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := json.NewDecoder(reader).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (r *StorageRepository) deletePrefix(ctx context.Context, prefix string) error {
	keys, err := r.storage.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// errInvalidID is returned by lookups for ids that cannot name a record
var errInvalidID = fmt.Errorf("invalid id: %w", storage.ErrNotFound)

func checkID(kind, id string) error {
	if !validID(id) {
		return fmt.Errorf("invalid %s id %q", kind, id)
	}
	return nil
}

// SaveBook stores book metadata
func (r *StorageRepository) SaveBook(ctx context.Context, book *types.Book) error {
	if err := checkID("book", book.ID); err != nil {
		return err
	}
	return r.putJSON(ctx, bookKey(book.ID), book)
}

// GetBook retrieves book metadata by ID
func (r *StorageRepository) GetBook(ctx context.Context, bookID string) (*types.Book, error) {
	if !validID(bookID) {
		return nil, errInvalidID
	}
	var book types.Book
	if err := r.getJSON(ctx, bookKey(bookID), &book); err != nil {
		return nil, fmt.Errorf("failed to get book %s: %w", bookID, err)
	}
	return &book, nil
}

// ListBooks returns all books, most recently read first
func (r *StorageRepository) ListBooks(ctx context.Context) ([]*types.Book, error) {
	keys, err := r.storage.List(ctx, booksPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	books := make([]*types.Book, 0)
	for _, key := range keys {
		if !isBookMetadata(key) {
			continue
		}
		var book types.Book
		if err := r.getJSON(ctx, key, &book); err != nil {
			continue
		}
		books = append(books, &book)
	}

	sort.SliceStable(books, func(i, j int) bool {
		return books[i].LastReadAt.After(books[j].LastReadAt)
	})
	return books, nil
}

func isBookMetadata(key string) bool {
	// books/<id>/metadata.json
	parts := strings.Split(key, "/")
	return len(parts) == 3 && parts[2] == metadataFile
}

// DeleteBook removes a book and everything stored for it
func (r *StorageRepository) DeleteBook(ctx context.Context, bookID string) error {
	if err := checkID("book", bookID); err != nil {
		return err
	}
	if err := r.deletePrefix(ctx, bookDir(bookID)); err != nil {
		return fmt.Errorf("failed to delete book %s: %w", bookID, err)
	}
	if err := r.DeleteProgress(ctx, bookID); err != nil {
		return err
	}
	return r.ClearCache(ctx, bookID)
}

// SaveChapters stores the parsed chapters of a book
func (r *StorageRepository) SaveChapters(ctx context.Context, bookID string, chapters []types.Chapter) error {
	if err := checkID("book", bookID); err != nil {
		return err
	}
	for i := range chapters {
		if err := r.putJSON(ctx, chapterKey(bookID, chapters[i].Index), &chapters[i]); err != nil {
			return fmt.Errorf("failed to save chapter %d: %w", chapters[i].Index, err)
		}
	}
	return nil
}

// GetChapter retrieves a parsed chapter by index
func (r *StorageRepository) GetChapter(ctx context.Context, bookID string, index int) (*types.Chapter, error) {
	if !validID(bookID) {
		return nil, errInvalidID
	}
	var chapter types.Chapter
	if err := r.getJSON(ctx, chapterKey(bookID, index), &chapter); err != nil {
		return nil, fmt.Errorf("failed to get chapter %d of %s: %w", index, bookID, err)
	}
	return &chapter, nil
}

// SaveRawFile stores the imported file as uploaded
func (r *StorageRepository) SaveRawFile(ctx context.Context, bookID string, data []byte, format types.FileType) error {
	if err := checkID("book", bookID); err != nil {
		return err
	}
	return r.storage.Put(ctx, rawFileKey(bookID, format), bytes.NewReader(data))
}

// GetRawFile retrieves the imported file
func (r *StorageRepository) GetRawFile(ctx context.Context, bookID string, format types.FileType) ([]byte, error) {
	if !validID(bookID) {
		return nil, errInvalidID
	}
	reader, err := r.storage.Get(ctx, rawFileKey(bookID, format))
	if err != nil {
		return nil, fmt.Errorf("failed to get raw file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw file: %w", err)
	}
	return data, nil
}

// SaveProgress stores the reading position of a book
func (r *StorageRepository) SaveProgress(ctx context.Context, progress *types.ReadingProgress) error {
	if err := checkID("book", progress.BookID); err != nil {
		return err
	}
	return r.putJSON(ctx, progressKey(progress.BookID), progress)
}

// GetProgress retrieves the reading position of a book
func (r *StorageRepository) GetProgress(ctx context.Context, bookID string) (*types.ReadingProgress, error) {
	if !validID(bookID) {
		return nil, errInvalidID
	}
	var progress types.ReadingProgress
	if err := r.getJSON(ctx, progressKey(bookID), &progress); err != nil {
		return nil, fmt.Errorf("failed to get progress of %s: %w", bookID, err)
	}
	return &progress, nil
}

// DeleteProgress forgets the reading position of a book
func (r *StorageRepository) DeleteProgress(ctx context.Context, bookID string) error {
	if err := checkID("book", bookID); err != nil {
		return err
	}
	return r.storage.Delete(ctx, progressKey(bookID))
}

// IsNotFound reports whether err means the requested record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
