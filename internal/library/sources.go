package library

import (
	"context"
	"fmt"
	"sort"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// DefaultSources are the example sources stored on first start. Both are
// disabled until the user points them at a real site.
func DefaultSources() []types.SourceConfig {
	return []types.SourceConfig{
		{
			ID:                  "source_1",
			Name:                "Example novel site 1",
			BaseURL:             "https://www.example1.com",
			SearchPathPattern:   "/search?q={keyword}",
			ChapterListSelector: ".chapter-list a",
			ContentSelector:     "#chapter-content",
			TitleSelector:       ".book-title h1",
			AuthorSelector:      ".book-author",
			BookURLSelector:     "a@href",
			BookItemSelector:    ".book-item",
			Enabled:             false,
		},
		{
			ID:                  "source_2",
			Name:                "Example novel site 2",
			BaseURL:             "https://www.example2.com",
			SearchPathPattern:   "/search?keyword={keyword}",
			ChapterListSelector: "#chapters a",
			ContentSelector:     ".content-text",
			TitleSelector:       "#book-name",
			AuthorSelector:      "#author-name",
			BookURLSelector:     "a@href",
			BookItemSelector:    ".search-result",
			Enabled:             false,
		},
	}
}

// SaveSource stores a source configuration
func (r *StorageRepository) SaveSource(ctx context.Context, source *types.SourceConfig) error {
	if err := checkID("source", source.ID); err != nil {
		return err
	}
	return r.putJSON(ctx, sourceKey(source.ID), source)
}

// GetSource retrieves a source by ID
func (r *StorageRepository) GetSource(ctx context.Context, sourceID string) (*types.SourceConfig, error) {
	if !validID(sourceID) {
		return nil, fmt.Errorf("failed to get source %q: %w", sourceID, errInvalidID)
	}
	var source types.SourceConfig
	if err := r.getJSON(ctx, sourceKey(sourceID), &source); err != nil {
		return nil, fmt.Errorf("failed to get source %s: %w", sourceID, err)
	}
	return &source, nil
}

// ListSources returns all sources ordered by name, then id
func (r *StorageRepository) ListSources(ctx context.Context) ([]types.SourceConfig, error) {
	keys, err := r.storage.List(ctx, sourcesPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	sources := make([]types.SourceConfig, 0, len(keys))
	for _, key := range keys {
		var source types.SourceConfig
		if err := r.getJSON(ctx, key, &source); err != nil {
			continue
		}
		sources = append(sources, source)
	}

	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Name != sources[j].Name {
			return sources[i].Name < sources[j].Name
		}
		return sources[i].ID < sources[j].ID
	})
	return sources, nil
}

// ListEnabledSources returns enabled sources ordered by name
func (r *StorageRepository) ListEnabledSources(ctx context.Context) ([]types.SourceConfig, error) {
	all, err := r.ListSources(ctx)
	if err != nil {
		return nil, err
	}

	enabled := make([]types.SourceConfig, 0, len(all))
	for _, s := range all {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled, nil
}

// SetSourceEnabled toggles a source
func (r *StorageRepository) SetSourceEnabled(ctx context.Context, sourceID string, enabled bool) error {
	source, err := r.GetSource(ctx, sourceID)
	if err != nil {
		return err
	}
	source.Enabled = enabled
	return r.SaveSource(ctx, source)
}

// DeleteSource removes a source
func (r *StorageRepository) DeleteSource(ctx context.Context, sourceID string) error {
	if err := checkID("source", sourceID); err != nil {
		return err
	}
	return r.storage.Delete(ctx, sourceKey(sourceID))
}

// SeedSources stores defaults when the source store is empty
func (r *StorageRepository) SeedSources(ctx context.Context, defaults []types.SourceConfig) (bool, error) {
	keys, err := r.storage.List(ctx, sourcesPrefix)
	if err != nil {
		return false, fmt.Errorf("failed to list sources: %w", err)
	}
	if len(keys) > 0 {
		return false, nil
	}

	for i := range defaults {
		if err := r.SaveSource(ctx, &defaults[i]); err != nil {
			return false, fmt.Errorf("failed to seed source %s: %w", defaults[i].ID, err)
		}
	}
	return true, nil
}
