// Package cache keeps the opening chapters of online books available offline.
// A Cacher does one pass over a book; a Scheduler runs passes in the
// background with a start delay, a connectivity check and retries.
package cache

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

const (
	// DefaultMaxChapters is how many leading chapters of a book are cached
	DefaultMaxChapters = 10
	// DefaultMaxContentLength is the longest chapter, in characters, that is cached
	DefaultMaxContentLength = 100000
)

// ChapterSource reads chapter lists and chapter text from an online source
type ChapterSource interface {
	GetChapterList(ctx context.Context, bookURL, sourceID string) ([]types.ChapterInfo, error)
	GetChapterContent(ctx context.Context, chapterURL, sourceID string) (string, error)
}

// Store is the part of the library the cacher reads and writes
type Store interface {
	GetOnlineBook(ctx context.Context, bookID string) (*types.OnlineBook, error)
	CachedChapterIndices(ctx context.Context, bookID string) ([]int, error)
	SaveCachedChapter(ctx context.Context, chapter *types.CachedChapter) error
}

// Result summarizes one caching pass
type Result struct {
	Cached  int
	Skipped int
	Failed  int
}

// Cacher fetches and stores the first chapters of a book
type Cacher struct {
	source           ChapterSource
	store            Store
	maxChapters      int
	maxContentLength int
	logger           zerolog.Logger
	now              func() time.Time
}

// NewCacher creates a cacher. Non-positive limits select the defaults.
func NewCacher(source ChapterSource, store Store, maxChapters, maxContentLength int, logger zerolog.Logger) *Cacher {
	if maxChapters <= 0 {
		maxChapters = DefaultMaxChapters
	}
	if maxContentLength <= 0 {
		maxContentLength = DefaultMaxContentLength
	}
	return &Cacher{
		source:           source,
		store:            store,
		maxChapters:      maxChapters,
		maxContentLength: maxContentLength,
		logger:           logger,
		now:              time.Now,
	}
}

// Run caches the book's leading chapters that are not cached yet. Chapters
// that fail to download or exceed the length limit are skipped. An error is
// returned only when the book or its chapter list cannot be read.
func (c *Cacher) Run(ctx context.Context, job Job) (Result, error) {
	var res Result

	book, err := c.store.GetOnlineBook(ctx, job.BookID)
	if err != nil {
		return res, fmt.Errorf("failed to load book %s: %w", job.BookID, err)
	}
	sourceID := job.SourceID
	if sourceID == "" {
		sourceID = book.SourceID
	}

	chapters, err := c.source.GetChapterList(ctx, book.BookURL, sourceID)
	if err != nil {
		return res, fmt.Errorf("failed to load chapter list: %w", err)
	}

	cached, err := c.store.CachedChapterIndices(ctx, book.ID)
	if err != nil {
		return res, err
	}
	have := make(map[int]bool, len(cached))
	for _, i := range cached {
		have[i] = true
	}

	limit := c.maxChapters
	if len(chapters) < limit {
		limit = len(chapters)
	}

	for _, ch := range chapters[:limit] {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if have[ch.Index] {
			continue
		}

		log := c.logger.With().Str("book_id", book.ID).Int("chapter", ch.Index).Logger()

		content, err := c.source.GetChapterContent(ctx, ch.URL, sourceID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to fetch chapter")
			res.Failed++
			continue
		}
		if utf8.RuneCountInString(content) > c.maxContentLength {
			log.Debug().Int("length", utf8.RuneCountInString(content)).Msg("chapter too long to cache")
			res.Skipped++
			continue
		}

		err = c.store.SaveCachedChapter(ctx, &types.CachedChapter{
			BookID:   book.ID,
			Index:    ch.Index,
			Title:    ch.Title,
			Content:  content,
			CachedAt: c.now(),
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to save chapter")
			res.Failed++
			continue
		}
		res.Cached++
	}

	c.logger.Info().
		Str("book_id", book.ID).
		Int("cached", res.Cached).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("cache pass finished")
	return res, nil
}
