package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/unalkalkan/NovelReader/internal/export"
	"github.com/unalkalkan/NovelReader/internal/library"
	"github.com/unalkalkan/NovelReader/internal/parser"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// maxUploadSize bounds imported book files
const maxUploadSize = 100 << 20

// BookHandler handles local book endpoints
type BookHandler struct {
	repo          library.Repository
	parserFactory parser.Factory
	exportOpts    export.Options
	logger        zerolog.Logger
	now           func() time.Time
}

// NewBookHandler creates a new book handler
func NewBookHandler(repo library.Repository, parserFactory parser.Factory, exportOpts export.Options, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		repo:          repo,
		parserFactory: parserFactory,
		exportOpts:    exportOpts,
		logger:        logger,
		now:           time.Now,
	}
}

// Register adds the book routes to mux
func (h *BookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/books", h.ListBooks)
	mux.HandleFunc("POST /api/v1/books", h.ImportBook)
	mux.HandleFunc("GET /api/v1/books/{id}", h.GetBook)
	mux.HandleFunc("DELETE /api/v1/books/{id}", h.DeleteBook)
	mux.HandleFunc("GET /api/v1/books/{id}/chapters/{index}", h.GetChapter)
	mux.HandleFunc("GET /api/v1/books/{id}/progress", h.GetProgress)
	mux.HandleFunc("PUT /api/v1/books/{id}/progress", h.SaveProgress)
	mux.HandleFunc("GET /api/v1/books/{id}/export", h.ExportBook)
}

// ImportBook handles POST /api/v1/books with a multipart "file" field.
// The file is parsed immediately and stored together with its chapters.
func (h *BookHandler) ImportBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	format, err := types.FileTypeFromName(header.Filename)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	content, err := parser.ParseFile(ctx, h.parserFactory, header.Filename, data)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusUnprocessableEntity)
		return
	}

	// Form values override the metadata found in the file.
	if title := r.FormValue("title"); title != "" {
		content.Title = title
	}
	if author := r.FormValue("author"); author != "" {
		content.Author = author
	}

	now := h.now()
	book := &types.Book{
		ID:            fmt.Sprintf("book_%d", now.UnixNano()),
		Title:         content.Title,
		Author:        content.Author,
		FilePath:      header.Filename,
		FileType:      format,
		TotalChapters: len(content.Chapters),
		AddedAt:       now,
		LastReadAt:    now,
	}

	if err := h.repo.SaveRawFile(ctx, book.ID, data, format); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	if err := h.repo.SaveChapters(ctx, book.ID, content.Chapters); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	if err := h.repo.SaveBook(ctx, book); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("book_id", book.ID).
		Str("format", string(format)).
		Int("chapters", book.TotalChapters).
		Msg("book imported")
	respondJSON(w, book, http.StatusCreated)
}

// ListBooks handles GET /api/v1/books
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.repo.ListBooks(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, books, http.StatusOK)
}

// GetBook handles GET /api/v1/books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.repo.GetBook(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, book, http.StatusOK)
}

// DeleteBook handles DELETE /api/v1/books/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := h.repo.GetBook(ctx, id); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	if err := h.repo.DeleteBook(ctx, id); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetChapter handles GET /api/v1/books/{id}/chapters/{index}
func (h *BookHandler) GetChapter(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		respondError(w, "Invalid chapter index", http.StatusBadRequest)
		return
	}

	chapter, err := h.repo.GetChapter(r.Context(), r.PathValue("id"), index)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, chapter, http.StatusOK)
}

// GetProgress handles GET /api/v1/books/{id}/progress
func (h *BookHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.repo.GetProgress(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, progress, http.StatusOK)
}

// SaveProgress handles PUT /api/v1/books/{id}/progress and marks the book
// as just read
func (h *BookHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	book, err := h.repo.GetBook(ctx, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	var progress types.ReadingProgress
	if err := decodeJSON(r, &progress); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if progress.Progress < 0 || progress.Progress > 1 {
		respondError(w, "progress must be between 0 and 1", http.StatusBadRequest)
		return
	}
	if progress.CurrentChapter < 0 || (book.TotalChapters > 0 && progress.CurrentChapter >= book.TotalChapters) {
		respondError(w, "current_chapter out of range", http.StatusBadRequest)
		return
	}

	now := h.now()
	progress.BookID = book.ID
	progress.UpdatedAt = now
	if err := h.repo.SaveProgress(ctx, &progress); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	book.LastReadAt = now
	if err := h.repo.SaveBook(ctx, book); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, progress, http.StatusOK)
}

// ExportBook handles GET /api/v1/books/{id}/export?format=md|json|pdf
func (h *BookHandler) ExportBook(w http.ResponseWriter, r *http.Request) {
	format := export.FormatMarkdown
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := export.ParseFormat(f)
		if err != nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = parsed
	}
	renderer, err := export.NewRenderer(format, h.exportOpts)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	book, err := h.repo.GetBook(ctx, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	content := &types.BookContent{
		Title:    book.Title,
		Author:   book.Author,
		Chapters: make([]types.Chapter, 0, book.TotalChapters),
	}
	for i := 0; i < book.TotalChapters; i++ {
		chapter, err := h.repo.GetChapter(ctx, book.ID, i)
		if err != nil {
			respondServiceError(w, h.logger, err, http.StatusInternalServerError)
			return
		}
		content.Chapters = append(content.Chapters, *chapter)
	}

	// Render into memory first so a failure can still produce an error response.
	var buf bytes.Buffer
	if err := renderer.Render(&buf, content); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(content, renderer)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
