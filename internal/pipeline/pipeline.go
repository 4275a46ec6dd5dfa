package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/kol-metrics/internal/datanorm"
	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/pkg/logger"
	"github.com/ignite/kol-metrics/internal/tabular"
)

// DefaultChunkSize is the number of video ids sent per statistics call.
const DefaultChunkSize = 50

// MissingAPIKeyMessage is reported once when YouTube rows exist but no key
// was supplied.
const MissingAPIKeyMessage = "YouTube data not fetched: missing API key"

// StatsFetcher retrieves statistics for a batch of YouTube video ids.
type StatsFetcher interface {
	FetchStats(ctx context.Context, ids []string, apiKey string) (map[string]domain.MetricStats, error)
}

// Extractor retrieves metrics for a single post.
type Extractor interface {
	Fetch(ctx context.Context, platform domain.Platform, url string) (domain.MetricStats, error)
}

// Output is the result of one ProcessFile call.
type Output struct {
	RunID   string                  `json:"run_id"`
	Results []domain.EnrichedResult `json:"items"`
	Errors  []string                `json:"errors"`
}

// Pipeline wires the loader, normalizer and fetchers together. It holds no
// per-call state and is safe for concurrent use if its fetchers are.
type Pipeline struct {
	stats     StatsFetcher
	extractor Extractor
	chunkSize int
}

// New creates a Pipeline using the given fetchers.
func New(stats StatsFetcher, extractor Extractor) *Pipeline {
	return &Pipeline{stats: stats, extractor: extractor, chunkSize: DefaultChunkSize}
}

// WithChunkSize overrides the batch size for statistics calls. Values
// outside 1..DefaultChunkSize are ignored.
func (p *Pipeline) WithChunkSize(n int) *Pipeline {
	if n > 0 && n <= DefaultChunkSize {
		p.chunkSize = n
	}
	return p
}

// ProcessFile loads the uploaded file, fetches metrics for every usable row
// and returns the enriched results together with human-readable errors.
// The returned error is non-nil only for input problems (see
// domain.IsInputError) or an unreadable file.
func (p *Pipeline) ProcessFile(ctx context.Context, data []byte, filename, apiKey string) (*Output, error) {
	out := &Output{RunID: uuid.New().String(), Results: []domain.EnrichedResult{}, Errors: []string{}}
	log := logger.With("run_id", out.RunID)
	start := time.Now()

	raw, err := tabular.Load(data, filename)
	if err != nil {
		return nil, err
	}
	rows, err := datanorm.Normalize(raw)
	if err != nil {
		return nil, err
	}
	log.Info("pipeline: rows accepted", "file", filename, "loaded", len(raw), "usable", len(rows))

	var batch, single []domain.NormalizedRow
	for _, row := range rows {
		switch row.Platform.Strategy() {
		case domain.StrategyBatch:
			batch = append(batch, row)
		case domain.StrategySingle:
			single = append(single, row)
		}
	}

	if len(batch) > 0 {
		results, errs := p.runBatch(ctx, batch, apiKey)
		out.Results = append(out.Results, results...)
		out.Errors = append(out.Errors, errs...)
	}
	for _, row := range single {
		stats, err := p.extractor.Fetch(ctx, row.Platform, row.URL)
		if err != nil {
			log.Warn("pipeline: row fetch failed", "platform", row.Platform, "row", row.RowNumber, "error", err)
			out.Errors = append(out.Errors, fmt.Sprintf("%s fetch failed (row %d): %v", row.Platform, row.RowNumber, err))
			continue
		}
		out.Results = append(out.Results, enrich(row, stats))
	}

	log.Info("pipeline: finished",
		"results", len(out.Results), "errors", len(out.Errors),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return out, nil
}

// runBatch fetches statistics for YouTube rows. Rows without a video id are
// skipped; rows whose chunk failed are left out of the results.
func (p *Pipeline) runBatch(ctx context.Context, rows []domain.NormalizedRow, apiKey string) ([]domain.EnrichedResult, []string) {
	if apiKey == "" {
		return nil, []string{MissingAPIKeyMessage}
	}

	type keyed struct {
		id  string
		row domain.NormalizedRow
	}
	var (
		ids     []string
		indexed []keyed
	)
	for _, row := range rows {
		id, ok := extractVideoID(row.URL)
		if !ok {
			continue
		}
		ids = append(ids, id)
		indexed = append(indexed, keyed{id: id, row: row})
	}

	acc := collectStats(ctx, p.stats, ids, apiKey, p.chunkSize)

	results := make([]domain.EnrichedResult, 0, len(indexed))
	for _, k := range indexed {
		if _, failed := acc.failed[k.id]; failed {
			continue
		}
		// Ids missing from a successful response count as zero.
		results = append(results, enrich(k.row, acc.stats[k.id]))
	}
	return results, acc.errors
}

// enrich combines a row with fetched stats. Fetched creator and post time
// win over the sheet values when present.
func enrich(row domain.NormalizedRow, stats domain.MetricStats) domain.EnrichedResult {
	creator := stats.Creator
	if creator == "" {
		creator = row.Creator
	}
	var posted any = row.PostedAt
	if stats.PostedAt != "" {
		posted = stats.PostedAt
	}
	return domain.EnrichedResult{
		Platform:       row.Platform,
		URL:            row.URL,
		Creator:        creator,
		CampaignID:     row.CampaignID,
		Notes:          row.Notes,
		PostedAt:       ResolveTimestamp(posted),
		Views:          stats.Views,
		Likes:          stats.Likes,
		Comments:       stats.Comments,
		EngagementRate: EngagementRate(stats.Views, stats.Likes, stats.Comments),
	}
}
