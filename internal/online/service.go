// Package online runs the site extractor against live sources: searching all
// enabled sources concurrently, reading book pages, chapter lists and chapter
// text, and keeping online books on the shelf.
package online

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/unalkalkan/NovelReader/internal/fetch"
	"github.com/unalkalkan/NovelReader/internal/library"
	"github.com/unalkalkan/NovelReader/internal/source"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

var (
	// ErrBlankKeyword is returned for empty or whitespace-only search keywords
	ErrBlankKeyword = errors.New("search keyword is blank")
	// ErrNoSources is returned when a search is started without enabled sources
	ErrNoSources = errors.New("no enabled sources")
	// ErrSourceNotFound is returned when a source id does not exist
	ErrSourceNotFound = errors.New("source not found")
	// ErrNoResults is returned when no source produced a search result
	ErrNoResults = errors.New("no results found")
	// ErrChapterNotFound is returned for chapter indices outside a book's chapter list
	ErrChapterNotFound = errors.New("chapter not found")
)

// Scheduler queues background caching of an online book
type Scheduler interface {
	Schedule(bookID, sourceID string)
}

// Service coordinates fetching and extraction for online sources
type Service struct {
	repo       library.Repository
	fetcher    fetch.Fetcher
	scheduler  Scheduler
	candidates source.Candidates
	logger     zerolog.Logger
	now        func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithScheduler queues caching whenever a book is added to the shelf
func WithScheduler(s Scheduler) Option {
	return func(svc *Service) { svc.scheduler = s }
}

// WithCandidates replaces the auto-detection heuristics
func WithCandidates(c source.Candidates) Option {
	return func(svc *Service) { svc.candidates = c }
}

// WithLogger sets the service logger
func WithLogger(l zerolog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// NewService creates an online service
func NewService(repo library.Repository, fetcher fetch.Fetcher, opts ...Option) *Service {
	svc := &Service{
		repo:       repo,
		fetcher:    fetcher,
		candidates: source.DefaultCandidates(),
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Search queries every enabled source concurrently. A failing source
// contributes no results. Results keep source name order, then page order,
// and repeated titles are dropped in favour of their first occurrence.
func (s *Service) Search(ctx context.Context, keyword string) ([]types.SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrBlankKeyword
	}

	sources, err := s.repo.ListEnabledSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	perSource := make([][]types.SearchResult, len(sources))
	var wg sync.WaitGroup
	for i := range sources {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results, err := s.SearchSource(ctx, sources[i], keyword)
			if err != nil {
				s.logger.Warn().Err(err).Str("source", sources[i].Name).Msg("search failed")
				return
			}
			perSource[i] = results
		}(i)
	}
	wg.Wait()

	merged := make([]types.SearchResult, 0)
	seen := make(map[string]bool)
	for _, results := range perSource {
		for _, r := range results {
			if seen[r.Title] {
				continue
			}
			seen[r.Title] = true
			merged = append(merged, r)
		}
	}

	if len(merged) == 0 {
		return nil, ErrNoResults
	}
	return merged, nil
}

// SearchSource queries a single source
func (s *Service) SearchSource(ctx context.Context, src types.SourceConfig, keyword string) ([]types.SearchResult, error) {
	searchURL, err := source.BuildSearchURL(src, keyword)
	if err != nil {
		return nil, err
	}
	doc, err := s.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	results := source.ExtractSearchResults(doc, src)
	s.logger.Debug().Str("source", src.Name).Int("results", len(results)).Msg("searched source")
	return results, nil
}

// GetBookInfo reads the metadata of a book page
func (s *Service) GetBookInfo(ctx context.Context, bookURL, sourceID string) (types.BookInfo, error) {
	src, doc, err := s.load(ctx, bookURL, sourceID)
	if err != nil {
		return types.BookInfo{}, err
	}
	return source.ExtractBookInfo(doc, src), nil
}

// GetChapterList reads the chapter list of a book page
func (s *Service) GetChapterList(ctx context.Context, bookURL, sourceID string) ([]types.ChapterInfo, error) {
	src, doc, err := s.load(ctx, bookURL, sourceID)
	if err != nil {
		return nil, err
	}
	return source.ExtractChapterList(doc, src), nil
}

// GetChapterContent reads the text of a chapter page
func (s *Service) GetChapterContent(ctx context.Context, chapterURL, sourceID string) (string, error) {
	src, doc, err := s.load(ctx, chapterURL, sourceID)
	if err != nil {
		return "", err
	}
	return source.ExtractChapterContent(doc, src), nil
}

// GetChapterMarkdown reads a chapter page and renders its content as Markdown
func (s *Service) GetChapterMarkdown(ctx context.Context, chapterURL, sourceID string) (string, error) {
	src, doc, err := s.load(ctx, chapterURL, sourceID)
	if err != nil {
		return "", err
	}
	return source.ExtractChapterMarkdown(doc, src)
}

// AutoDetectSource fetches a sample page and guesses a source configuration
// for it. The result is neither enabled nor saved.
func (s *Service) AutoDetectSource(ctx context.Context, baseURL string) (types.SourceConfig, error) {
	doc, err := s.fetcher.Fetch(ctx, baseURL)
	if err != nil {
		return types.SourceConfig{}, err
	}
	return source.AutoDetect(doc, baseURL, s.candidates), nil
}

// AddOnlineBook puts a search result on the shelf and queues its chapters
// for background caching. Adding the same book again refreshes its metadata.
func (s *Service) AddOnlineBook(ctx context.Context, result types.SearchResult) (*types.OnlineBook, error) {
	if _, err := s.source(ctx, result.SourceID); err != nil {
		return nil, err
	}
	if result.BookURL == "" {
		return nil, fmt.Errorf("book url is required")
	}

	book := &types.OnlineBook{
		ID:          source.BookID(result.BookURL),
		SourceID:    result.SourceID,
		BookURL:     result.BookURL,
		Title:       result.Title,
		Author:      result.Author,
		Description: result.Description,
		CoverURL:    result.CoverURL,
		AddedAt:     s.now(),
	}
	if existing, err := s.repo.GetOnlineBook(ctx, book.ID); err == nil {
		book.AddedAt = existing.AddedAt
	}

	if err := s.repo.SaveOnlineBook(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to save online book: %w", err)
	}
	if s.scheduler != nil {
		s.scheduler.Schedule(book.ID, book.SourceID)
	}

	s.logger.Info().Str("book_id", book.ID).Str("source", book.SourceID).Msg("online book added")
	return book, nil
}

// ReadChapter returns a chapter of a shelved online book, from the cache
// when present, otherwise fetched and then cached.
func (s *Service) ReadChapter(ctx context.Context, bookID string, index int) (*types.CachedChapter, error) {
	if cached, err := s.repo.GetCachedChapter(ctx, bookID, index); err == nil {
		return cached, nil
	}

	book, err := s.repo.GetOnlineBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	chapters, err := s.GetChapterList(ctx, book.BookURL, book.SourceID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(chapters) {
		return nil, fmt.Errorf("%w: %d of %d", ErrChapterNotFound, index, len(chapters))
	}

	content, err := s.GetChapterContent(ctx, chapters[index].URL, book.SourceID)
	if err != nil {
		return nil, err
	}

	chapter := &types.CachedChapter{
		BookID:   bookID,
		Index:    index,
		Title:    chapters[index].Title,
		Content:  content,
		CachedAt: s.now(),
	}
	if err := s.repo.SaveCachedChapter(ctx, chapter); err != nil {
		s.logger.Warn().Err(err).Str("book_id", bookID).Int("chapter", index).Msg("failed to cache chapter")
	}
	return chapter, nil
}

func (s *Service) source(ctx context.Context, sourceID string) (types.SourceConfig, error) {
	src, err := s.repo.GetSource(ctx, sourceID)
	if err != nil {
		if library.IsNotFound(err) {
			return types.SourceConfig{}, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
		}
		return types.SourceConfig{}, err
	}
	return *src, nil
}

func (s *Service) load(ctx context.Context, pageURL, sourceID string) (types.SourceConfig, *goquery.Document, error) {
	src, err := s.source(ctx, sourceID)
	if err != nil {
		return types.SourceConfig{}, nil, err
	}
	doc, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return types.SourceConfig{}, nil, err
	}
	return src, doc, nil
}
