package pipeline

import (
	"context"
	"fmt"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/pkg/logger"
	"github.com/ignite/kol-metrics/internal/youtube"
)

var extractVideoID = youtube.ExtractVideoID

// statsAccumulator is the running state of the chunk fold.
type statsAccumulator struct {
	stats  map[string]domain.MetricStats
	failed map[string]struct{}
	errors []string
}

// collectStats folds over ids in chunks of size, merging each successful
// response into the accumulator and recording one error per failed chunk.
// A failure never stops the remaining chunks.
func collectStats(ctx context.Context, fetcher StatsFetcher, ids []string, apiKey string, size int) statsAccumulator {
	acc := statsAccumulator{
		stats:  make(map[string]domain.MetricStats, len(ids)),
		failed: make(map[string]struct{}),
	}
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		acc = foldChunk(ctx, fetcher, acc, ids[start:end], start, apiKey)
	}
	return acc
}

func foldChunk(ctx context.Context, fetcher StatsFetcher, acc statsAccumulator, chunk []string, offset int, apiKey string) statsAccumulator {
	part, err := fetcher.FetchStats(ctx, chunk, apiKey)
	if err != nil {
		first, last := offset+1, offset+len(chunk)
		logger.Warn("pipeline: youtube chunk failed", "range", fmt.Sprintf("%d-%d", first, last), "error", err)
		acc.errors = append(acc.errors, fmt.Sprintf("YouTube fetch failed (%d-%d): %v", first, last, err))
		for _, id := range chunk {
			if _, ok := acc.stats[id]; !ok {
				acc.failed[id] = struct{}{}
			}
		}
		return acc
	}
	for id, s := range part {
		acc.stats[id] = s
	}
	// Ids requested in a successful chunk are no longer failed even when the
	// response omitted them.
	for _, id := range chunk {
		delete(acc.failed, id)
	}
	return acc
}
