package library

import (
	"context"
	"fmt"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// SaveCachedChapter stores a fetched chapter, replacing any previous copy
func (r *StorageRepository) SaveCachedChapter(ctx context.Context, chapter *types.CachedChapter) error {
	if err := checkID("book", chapter.BookID); err != nil {
		return err
	}
	return r.putJSON(ctx, cacheKey(chapter.BookID, chapter.Index), chapter)
}

// GetCachedChapter retrieves a cached chapter by book and index
func (r *StorageRepository) GetCachedChapter(ctx context.Context, bookID string, index int) (*types.CachedChapter, error) {
	if !validID(bookID) {
		return nil, fmt.Errorf("failed to get cached chapter: %w", errInvalidID)
	}
	var chapter types.CachedChapter
	if err := r.getJSON(ctx, cacheKey(bookID, index), &chapter); err != nil {
		return nil, fmt.Errorf("failed to get cached chapter %d of %s: %w", index, bookID, err)
	}
	return &chapter, nil
}

// ListCachedChapters returns a book's cached chapters ordered by index
func (r *StorageRepository) ListCachedChapters(ctx context.Context, bookID string) ([]*types.CachedChapter, error) {
	indices, err := r.CachedChapterIndices(ctx, bookID)
	if err != nil {
		return nil, err
	}

	chapters := make([]*types.CachedChapter, 0, len(indices))
	for _, index := range indices {
		chapter, err := r.GetCachedChapter(ctx, bookID, index)
		if err != nil {
			continue
		}
		chapters = append(chapters, chapter)
	}
	return chapters, nil
}

// CachedChapterIndices returns the cached indices of a book in ascending order
func (r *StorageRepository) CachedChapterIndices(ctx context.Context, bookID string) ([]int, error) {
	if err := checkID("book", bookID); err != nil {
		return nil, err
	}
	keys, err := r.storage.List(ctx, cacheDir(bookID))
	if err != nil {
		return nil, fmt.Errorf("failed to list cached chapters: %w", err)
	}

	// Keys are zero padded, so the listing is already in index order.
	indices := make([]int, 0, len(keys))
	for _, key := range keys {
		if index, ok := indexFromKey(key); ok {
			indices = append(indices, index)
		}
	}
	return indices, nil
}

// ClearCache removes all cached chapters of a book
func (r *StorageRepository) ClearCache(ctx context.Context, bookID string) error {
	if err := checkID("book", bookID); err != nil {
		return err
	}
	if err := r.deletePrefix(ctx, cacheDir(bookID)); err != nil {
		return fmt.Errorf("failed to clear cache of %s: %w", bookID, err)
	}
	return nil
}

// DeleteOldestCached removes up to limit cached chapters with the lowest
// indices, the ones a reader has most likely passed. It returns how many
// were removed.
func (r *StorageRepository) DeleteOldestCached(ctx context.Context, bookID string, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}
	indices, err := r.CachedChapterIndices(ctx, bookID)
	if err != nil {
		return 0, err
	}
	if limit < len(indices) {
		indices = indices[:limit]
	}

	removed := 0
	for _, index := range indices {
		if err := r.storage.Delete(ctx, cacheKey(bookID, index)); err != nil {
			return removed, fmt.Errorf("failed to delete cached chapter %d: %w", index, err)
		}
		removed++
	}
	return removed, nil
}
