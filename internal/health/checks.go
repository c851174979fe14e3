package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/unalkalkan/NovelReader/internal/storage"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

// StorageCheck reports the storage backend unhealthy when a probe key
// cannot be looked up
func StorageCheck(adapter storage.Adapter) func(ctx context.Context) (Status, error) {
	return func(ctx context.Context) (Status, error) {
		if _, err := adapter.Exists(ctx, ".healthcheck"); err != nil {
			return StatusUnhealthy, err
		}
		return StatusHealthy, nil
	}
}

// SourceLister is the part of the library used by SourcesCheck
type SourceLister interface {
	ListEnabledSources(ctx context.Context) ([]types.SourceConfig, error)
}

var errNoEnabledSources = errors.New("no enabled sources, online search is unavailable")

// SourcesCheck reports a degraded service while no source is enabled
func SourcesCheck(lister SourceLister) func(ctx context.Context) (Status, error) {
	return func(ctx context.Context) (Status, error) {
		sources, err := lister.ListEnabledSources(ctx)
		if err != nil {
			return StatusUnhealthy, fmt.Errorf("failed to list sources: %w", err)
		}
		if len(sources) == 0 {
			return StatusDegraded, errNoEnabledSources
		}
		return StatusHealthy, nil
	}
}
