package online

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/unalkalkan/NovelReader/internal/fetch"
	"github.com/unalkalkan/NovelReader/internal/library"
	"github.com/unalkalkan/NovelReader/internal/source"
	"github.com/unalkalkan/NovelReader/internal/storage"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// newSite serves a small novel site. Search pages list the books named in
// titles; /broken always fails.
func newSite(t *testing.T, titles ...string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString("<html><body>")
		for i, title := range titles {
			fmt.Fprintf(&b, `<div class="book-item"><h3 class="title">%s</h3><a href="/book/%d">open</a></div>`, title, i)
		}
		b.WriteString("</body></html>")
		w.Write([]byte(b.String()))
	})
	mux.HandleFunc("/book/0", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta name="description" content="About it"></head><body>
<h1 class="title">Book Zero</h1><span class="author">Writer</span>
<div class="chapters"><a href="/chapter/0">第一章 开始</a><a href="/chapter/1">第二章 继续</a></div>
</body></html>`))
	})
	mux.HandleFunc("/book/9/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div class="chapters"><a href="1.html">Relative chapter</a></div>`))
	})
	mux.HandleFunc("/book/9/1.html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div id="content"><p>Nested chapter.</p></div>`))
	})
	mux.HandleFunc("/1.html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div id="content"><p>Site root page.</p></div>`))
	})
	mux.HandleFunc("/chapter/", func(w http.ResponseWriter, r *http.Request) {
		n := strings.TrimPrefix(r.URL.Path, "/chapter/")
		fmt.Fprintf(w, `<div id="content"><p>Text of chapter %s.</p><p>Second paragraph.</p></div>`, n)
	})
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func siteSource(id, name, baseURL string) types.SourceConfig {
	return types.SourceConfig{
		ID:                  id,
		Name:                name,
		BaseURL:             baseURL,
		SearchPathPattern:   "/search?q={keyword}",
		ChapterListSelector: "div.chapters a",
		ContentSelector:     "#content",
		TitleSelector:       ".title",
		AuthorSelector:      ".author",
		BookURLSelector:     "a@href",
		BookItemSelector:    ".book-item",
		Enabled:             true,
	}
}

// deadSource searches below /broken/, which always fails
func deadSource(id, name, baseURL string) types.SourceConfig {
	src := siteSource(id, name, baseURL+"/broken/")
	src.SearchPathPattern = "search?q={keyword}"
	return src
}

type recordingScheduler struct {
	mu   sync.Mutex
	jobs []string
}

func (r *recordingScheduler) Schedule(bookID, sourceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, bookID+"@"+sourceID)
}

func newTestService(t *testing.T, sources ...types.SourceConfig) (*Service, *library.StorageRepository, *recordingScheduler) {
	t.Helper()
	adapter, err := storage.NewLocalAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage adapter: %v", err)
	}
	repo := library.NewRepository(adapter)
	for i := range sources {
		if err := repo.SaveSource(context.Background(), &sources[i]); err != nil {
			t.Fatalf("Failed to save source: %v", err)
		}
	}
	sched := &recordingScheduler{}
	return NewService(repo, fetch.New(fetch.Options{}), WithScheduler(sched)), repo, sched
}

func TestSearch(t *testing.T) {
	siteA := newSite(t, "Alpha Tale", "Shared Title")
	siteB := newSite(t, "Shared Title", "Beta Tale")

	svc, _, _ := newTestService(t,
		siteSource("b", "B site", siteB.URL),
		siteSource("a", "A site", siteA.URL),
		deadSource("dead", "Dead site", siteA.URL),
	)

	results, err := svc.Search(context.Background(), "  tale ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	var titles []string
	for _, r := range results {
		titles = append(titles, r.Title)
	}
	expected := []string{"Alpha Tale", "Shared Title", "Beta Tale"}
	if strings.Join(titles, "|") != strings.Join(expected, "|") {
		t.Errorf("Expected %v, got %v", expected, titles)
	}
	if results[1].SourceID != "a" {
		t.Errorf("Expected first occurrence of a duplicate to win, got source %q", results[1].SourceID)
	}
}

func TestSearch_Errors(t *testing.T) {
	site := newSite(t)

	t.Run("Blank keyword", func(t *testing.T) {
		svc, _, _ := newTestService(t, siteSource("a", "A", site.URL))
		if _, err := svc.Search(context.Background(), " \t"); !errors.Is(err, ErrBlankKeyword) {
			t.Errorf("Expected ErrBlankKeyword, got %v", err)
		}
	})

	t.Run("No enabled sources", func(t *testing.T) {
		disabled := siteSource("a", "A", site.URL)
		disabled.Enabled = false
		svc, _, _ := newTestService(t, disabled)
		if _, err := svc.Search(context.Background(), "x"); !errors.Is(err, ErrNoSources) {
			t.Errorf("Expected ErrNoSources, got %v", err)
		}
	})

	t.Run("No results", func(t *testing.T) {
		svc, _, _ := newTestService(t, siteSource("a", "A", site.URL), deadSource("d", "Dead", site.URL))
		if _, err := svc.Search(context.Background(), "x"); !errors.Is(err, ErrNoResults) {
			t.Errorf("Expected ErrNoResults, got %v", err)
		}
	})
}

func TestBookPages(t *testing.T) {
	site := newSite(t)
	svc, _, _ := newTestService(t, siteSource("a", "A", site.URL))
	ctx := context.Background()

	info, err := svc.GetBookInfo(ctx, site.URL+"/book/0", "a")
	if err != nil {
		t.Fatalf("GetBookInfo failed: %v", err)
	}
	if info.Title != "Book Zero" || info.Author != "Writer" || info.Description != "About it" {
		t.Errorf("Unexpected info %+v", info)
	}

	chapters, err := svc.GetChapterList(ctx, site.URL+"/book/0", "a")
	if err != nil {
		t.Fatalf("GetChapterList failed: %v", err)
	}
	if len(chapters) != 2 || chapters[1].URL != site.URL+"/chapter/1" {
		t.Errorf("Unexpected chapters %+v", chapters)
	}

	content, err := svc.GetChapterContent(ctx, chapters[1].URL, "a")
	if err != nil {
		t.Fatalf("GetChapterContent failed: %v", err)
	}
	if content != "Text of chapter 1.\nSecond paragraph." {
		t.Errorf("Unexpected content %q", content)
	}

	if _, err := svc.GetBookInfo(ctx, site.URL+"/book/0", "missing"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound, got %v", err)
	}
	if _, err := svc.GetChapterContent(ctx, site.URL+"/broken/1", "a"); err == nil {
		t.Error("Expected transport error")
	}
}

func TestReadChapter_RelativeChapterLinks(t *testing.T) {
	site := newSite(t)
	svc, _, _ := newTestService(t, siteSource("a", "A", site.URL))
	ctx := context.Background()

	book, err := svc.AddOnlineBook(ctx, types.SearchResult{
		Title:    "Nested",
		BookURL:  site.URL + "/book/9/",
		SourceID: "a",
	})
	if err != nil {
		t.Fatalf("AddOnlineBook failed: %v", err)
	}

	chapters, err := svc.GetChapterList(ctx, book.BookURL, "a")
	if err != nil {
		t.Fatalf("GetChapterList failed: %v", err)
	}
	if len(chapters) != 1 || chapters[0].URL != site.URL+"/book/9/1.html" {
		t.Fatalf("Expected chapter url below the book page, got %+v", chapters)
	}

	chapter, err := svc.ReadChapter(ctx, book.ID, 0)
	if err != nil {
		t.Fatalf("ReadChapter failed: %v", err)
	}
	if chapter.Content != "Nested chapter." {
		t.Errorf("Expected nested chapter content, got %q", chapter.Content)
	}
}

func TestAutoDetectSource(t *testing.T) {
	site := newSite(t)
	svc, _, _ := newTestService(t)

	cfg, err := svc.AutoDetectSource(context.Background(), site.URL+"/chapter/3")
	if err != nil {
		t.Fatalf("AutoDetectSource failed: %v", err)
	}
	if cfg.ContentSelector != "div#content" || cfg.Enabled || cfg.ID != "" {
		t.Errorf("Unexpected detection %+v", cfg)
	}

	if _, err := svc.AutoDetectSource(context.Background(), site.URL+"/broken/"); err == nil {
		t.Error("Expected fetch error to be returned")
	}
}

func TestAddOnlineBookAndReadChapter(t *testing.T) {
	site := newSite(t)
	svc, repo, sched := newTestService(t, siteSource("a", "A", site.URL))
	ctx := context.Background()

	result := types.SearchResult{
		BookID:   source.BookID(site.URL + "/book/0"),
		Title:    "Book Zero",
		Author:   "Writer",
		BookURL:  site.URL + "/book/0",
		SourceID: "a",
	}

	book, err := svc.AddOnlineBook(ctx, result)
	if err != nil {
		t.Fatalf("AddOnlineBook failed: %v", err)
	}
	if book.ID != result.BookID {
		t.Errorf("Expected id %q, got %q", result.BookID, book.ID)
	}
	if len(sched.jobs) != 1 || sched.jobs[0] != book.ID+"@a" {
		t.Errorf("Expected caching to be scheduled, got %v", sched.jobs)
	}

	chapter, err := svc.ReadChapter(ctx, book.ID, 0)
	if err != nil {
		t.Fatalf("ReadChapter failed: %v", err)
	}
	if chapter.Title != "第一章 开始" || chapter.Content != "Text of chapter 0.\nSecond paragraph." {
		t.Errorf("Unexpected chapter %+v", chapter)
	}
	if _, err := repo.GetCachedChapter(ctx, book.ID, 0); err != nil {
		t.Errorf("Expected chapter to be cached: %v", err)
	}

	if _, err := svc.ReadChapter(ctx, book.ID, 5); !errors.Is(err, ErrChapterNotFound) {
		t.Errorf("Expected ErrChapterNotFound, got %v", err)
	}

	result.SourceID = "missing"
	if _, err := svc.AddOnlineBook(ctx, result); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound, got %v", err)
	}
}
