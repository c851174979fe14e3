package library

import (
	"context"
	"fmt"
	"sort"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// SaveOnlineBook stores a book added from a source
func (r *StorageRepository) SaveOnlineBook(ctx context.Context, book *types.OnlineBook) error {
	if err := checkID("online book", book.ID); err != nil {
		return err
	}
	return r.putJSON(ctx, onlineBookKey(book.ID), book)
}

// GetOnlineBook retrieves an online book by ID
func (r *StorageRepository) GetOnlineBook(ctx context.Context, bookID string) (*types.OnlineBook, error) {
	if !validID(bookID) {
		return nil, fmt.Errorf("failed to get online book %q: %w", bookID, errInvalidID)
	}
	var book types.OnlineBook
	if err := r.getJSON(ctx, onlineBookKey(bookID), &book); err != nil {
		return nil, fmt.Errorf("failed to get online book %s: %w", bookID, err)
	}
	return &book, nil
}

// ListOnlineBooks returns online books, most recently added first
func (r *StorageRepository) ListOnlineBooks(ctx context.Context) ([]*types.OnlineBook, error) {
	keys, err := r.storage.List(ctx, onlinePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list online books: %w", err)
	}

	books := make([]*types.OnlineBook, 0, len(keys))
	for _, key := range keys {
		var book types.OnlineBook
		if err := r.getJSON(ctx, key, &book); err != nil {
			continue
		}
		books = append(books, &book)
	}

	sort.SliceStable(books, func(i, j int) bool {
		return books[i].AddedAt.After(books[j].AddedAt)
	})
	return books, nil
}

// DeleteOnlineBook removes an online book and its cached chapters
func (r *StorageRepository) DeleteOnlineBook(ctx context.Context, bookID string) error {
	if err := checkID("online book", bookID); err != nil {
		return err
	}
	if err := r.storage.Delete(ctx, onlineBookKey(bookID)); err != nil {
		return fmt.Errorf("failed to delete online book %s: %w", bookID, err)
	}
	return r.ClearCache(ctx, bookID)
}
