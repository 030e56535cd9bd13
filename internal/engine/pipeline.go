package engine

import (
	"context"
	"time"

	"salarydash/internal/models"
)

// LoadSnapshot loads source and aggregates it. Failures are reported inside
// the snapshot as StateFailed so callers can tell them apart from an empty load.
func LoadSnapshot(ctx context.Context, source string, opts Options) models.Snapshot {
	start := time.Now()
	snap := models.Snapshot{Source: source}

	store, err := LoadColumnar(ctx, source)
	if err == nil {
		snap.Aggregation, err = store.Aggregate(opts)
	}

	snap.Duration = time.Since(start)
	if err != nil {
		snap.State = models.StateFailed
		snap.Err = err
		return snap
	}
	snap.State = models.StateReady
	snap.LoadedAt = time.Now()
	return snap
}
