package api

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/unalkalkan/NovelReader/internal/library"
	"github.com/unalkalkan/NovelReader/internal/online"
	"github.com/unalkalkan/NovelReader/internal/source"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// maxSourcesBody limits YAML imports
const maxSourcesBody = 1 << 20

// SourceHandler handles source configuration endpoints
type SourceHandler struct {
	repo    library.Repository
	service *online.Service
	logger  zerolog.Logger
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(repo library.Repository, service *online.Service, logger zerolog.Logger) *SourceHandler {
	return &SourceHandler{repo: repo, service: service, logger: logger}
}

// Register adds the source routes to mux
func (h *SourceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/sources", h.ListSources)
	mux.HandleFunc("POST /api/v1/sources", h.CreateSource)
	mux.HandleFunc("GET /api/v1/sources/export", h.ExportSources)
	mux.HandleFunc("POST /api/v1/sources/import", h.ImportSources)
	mux.HandleFunc("POST /api/v1/sources/detect", h.DetectSource)
	mux.HandleFunc("GET /api/v1/sources/{id}", h.GetSource)
	mux.HandleFunc("PUT /api/v1/sources/{id}", h.UpdateSource)
	mux.HandleFunc("DELETE /api/v1/sources/{id}", h.DeleteSource)
	mux.HandleFunc("PUT /api/v1/sources/{id}/enabled", h.SetEnabled)
}

// ListSources handles GET /api/v1/sources
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.repo.ListSources(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, sources, http.StatusOK)
}

// CreateSource handles POST /api/v1/sources
func (h *SourceHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var src types.SourceConfig
	if err := decodeJSON(r, &src); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := source.Validate(src); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if _, err := h.repo.GetSource(ctx, src.ID); err == nil {
		respondError(w, fmt.Sprintf("Source %s already exists", src.ID), http.StatusConflict)
		return
	}
	if err := h.repo.SaveSource(ctx, &src); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("source", src.ID).Msg("source created")
	respondJSON(w, src, http.StatusCreated)
}

// GetSource handles GET /api/v1/sources/{id}
func (h *SourceHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	src, err := h.repo.GetSource(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, src, http.StatusOK)
}

// UpdateSource handles PUT /api/v1/sources/{id}. The id in the path wins
// over the one in the body.
func (h *SourceHandler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := h.repo.GetSource(ctx, id); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	var src types.SourceConfig
	if err := decodeJSON(r, &src); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	src.ID = id
	if err := source.Validate(src); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.SaveSource(ctx, &src); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, src, http.StatusOK)
}

// DeleteSource handles DELETE /api/v1/sources/{id}
func (h *SourceHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := h.repo.GetSource(ctx, id); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	if err := h.repo.DeleteSource(ctx, id); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetEnabled handles PUT /api/v1/sources/{id}/enabled
func (h *SourceHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")
	if err := h.repo.SetSourceEnabled(ctx, id, req.Enabled); err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	src, err := h.repo.GetSource(ctx, id)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, src, http.StatusOK)
}

// DetectSource handles POST /api/v1/sources/detect. The detected
// configuration is returned for review and not saved.
func (h *SourceHandler) DetectSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BaseURL string `json:"base_url"`
	}
	if err := decodeJSON(r, &req); err != nil || req.BaseURL == "" {
		respondError(w, "base_url is required", http.StatusBadRequest)
		return
	}

	src, err := h.service.AutoDetectSource(r.Context(), req.BaseURL)
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, src, http.StatusOK)
}

// ExportSources handles GET /api/v1/sources/export
func (h *SourceHandler) ExportSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.repo.ListSources(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="sources.yaml"`)
	if err := source.WriteYAML(w, sources); err != nil {
		h.logger.Error().Err(err).Msg("failed to write sources")
	}
}

// ImportSources handles POST /api/v1/sources/import with a YAML body.
// Imported sources replace stored ones with the same id.
func (h *SourceHandler) ImportSources(w http.ResponseWriter, r *http.Request) {
	sources, err := source.ReadYAML(http.MaxBytesReader(w, r.Body, maxSourcesBody))
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	for i := range sources {
		if err := h.repo.SaveSource(ctx, &sources[i]); err != nil {
			respondServiceError(w, h.logger, err, http.StatusInternalServerError)
			return
		}
	}

	h.logger.Info().Int("count", len(sources)).Msg("sources imported")
	respondJSON(w, map[string]int{"imported": len(sources)}, http.StatusOK)
}
