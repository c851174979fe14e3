package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/unalkalkan/NovelReader/internal/library"
	"github.com/unalkalkan/NovelReader/internal/online"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// OnlineHandler handles search and online book endpoints
type OnlineHandler struct {
	service *online.Service
	repo    library.Repository
	logger  zerolog.Logger
}

// NewOnlineHandler creates a new online handler
func NewOnlineHandler(service *online.Service, repo library.Repository, logger zerolog.Logger) *OnlineHandler {
	return &OnlineHandler{service: service, repo: repo, logger: logger}
}

// Register adds the search and online routes to mux
func (h *OnlineHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/online/info", h.BookInfo)
	mux.HandleFunc("GET /api/v1/online/chapters", h.ChapterList)
	mux.HandleFunc("GET /api/v1/online/content", h.ChapterContent)
	mux.HandleFunc("GET /api/v1/online/books", h.ListBooks)
	mux.HandleFunc("POST /api/v1/online/books", h.AddBook)
	mux.HandleFunc("DELETE /api/v1/online/books/{id}", h.DeleteBook)
	mux.HandleFunc("GET /api/v1/online/books/{id}/chapters/{index}", h.ReadChapter)
	mux.HandleFunc("GET /api/v1/online/books/{id}/cache", h.CachedChapters)
	mux.HandleFunc("DELETE /api/v1/online/books/{id}/cache", h.ClearCache)
}

// Search handles GET /api/v1/search?q=
func (h *OnlineHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, results, http.StatusOK)
}

// pageParams reads the url and source query parameters shared by the page endpoints
func pageParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	pageURL, sourceID := strings.TrimSpace(q.Get("url")), strings.TrimSpace(q.Get("source"))
	if pageURL == "" || sourceID == "" {
		respondError(w, "url and source are required", http.StatusBadRequest)
		return "", "", false
	}
	return pageURL, sourceID, true
}

// BookInfo handles GET /api/v1/online/info?url=&source=
func (h *OnlineHandler) BookInfo(w http.ResponseWriter, r *http.Request) {
	pageURL, sourceID, ok := pageParams(w, r)
	if !ok {
		return
	}
	info, err := h.service.GetBookInfo(r.Context(), pageURL, sourceID)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, info, http.StatusOK)
}

// ChapterList handles GET /api/v1/online/chapters?url=&source=
func (h *OnlineHandler) ChapterList(w http.ResponseWriter, r *http.Request) {
	pageURL, sourceID, ok := pageParams(w, r)
	if !ok {
		return
	}
	chapters, err := h.service.GetChapterList(r.Context(), pageURL, sourceID)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, chapters, http.StatusOK)
}

// ChapterContent handles GET /api/v1/online/content?url=&source=&format=
// format=markdown returns the chapter converted to Markdown instead of plain text.
func (h *OnlineHandler) ChapterContent(w http.ResponseWriter, r *http.Request) {
	pageURL, sourceID, ok := pageParams(w, r)
	if !ok {
		return
	}

	var content string
	var err error
	format := r.URL.Query().Get("format")
	switch format {
	case "", "text":
		format = "text"
		content, err = h.service.GetChapterContent(r.Context(), pageURL, sourceID)
	case "markdown", "md":
		format = "markdown"
		content, err = h.service.GetChapterMarkdown(r.Context(), pageURL, sourceID)
	default:
		respondError(w, "format must be text or markdown", http.StatusBadRequest)
		return
	}
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusBadGateway)
		return
	}

	respondJSON(w, map[string]string{"format": format, "content": content}, http.StatusOK)
}

// ListBooks handles GET /api/v1/online/books
func (h *OnlineHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.repo.ListOnlineBooks(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, books, http.StatusOK)
}

// AddBook handles POST /api/v1/online/books with a search result as body
func (h *OnlineHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var result types.SearchResult
	if err := decodeJSON(r, &result); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if result.BookURL == "" || result.SourceID == "" {
		respondError(w, "book_url and source_id are required", http.StatusBadRequest)
		return
	}

	book, err := h.service.AddOnlineBook(r.Context(), result)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, book, http.StatusCreated)
}

// DeleteBook handles DELETE /api/v1/online/books/{id}
func (h *OnlineHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := h.repo.GetOnlineBook(ctx, id); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	if err := h.repo.DeleteOnlineBook(ctx, id); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReadChapter handles GET /api/v1/online/books/{id}/chapters/{index}
func (h *OnlineHandler) ReadChapter(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		respondError(w, "Invalid chapter index", http.StatusBadRequest)
		return
	}

	chapter, err := h.service.ReadChapter(r.Context(), r.PathValue("id"), index)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, chapter, http.StatusOK)
}

// CachedChapters handles GET /api/v1/online/books/{id}/cache
func (h *OnlineHandler) CachedChapters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := h.repo.GetOnlineBook(ctx, id); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	indices, err := h.repo.CachedChapterIndices(ctx, id)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{"book_id": id, "count": len(indices), "indices": indices}, http.StatusOK)
}

// ClearCache handles DELETE /api/v1/online/books/{id}/cache
func (h *OnlineHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.ClearCache(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
