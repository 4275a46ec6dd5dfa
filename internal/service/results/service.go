package results

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/pkg/logger"
)

const (
	DefaultLimit = 200
	MaxLimit     = 1000
)

// ExportColumns is the header row of Export.
var ExportColumns = []string{
	"id", "platform", "url", "creator", "campaign_id", "posted_at",
	"views", "likes", "comments", "engagement_rate", "notes", "fetched_at",
}

// Service implements result persistence rules on top of a Repository.
type Service struct {
	repo         Repository
	defaultOrder Order
}

// NewService creates a results service backed by the given repository.
// Listings without an explicit order use defaultOrder, or OrderDesc when
// it is empty.
func NewService(repo Repository, defaultOrder Order) *Service {
	if defaultOrder != OrderAsc {
		defaultOrder = OrderDesc
	}
	return &Service{repo: repo, defaultOrder: defaultOrder}
}

// Save upserts the results of one pipeline run.
func (s *Service) Save(ctx context.Context, items []domain.EnrichedResult) ([]domain.StoredResult, error) {
	if len(items) == 0 {
		return []domain.StoredResult{}, nil
	}
	stored, err := s.repo.UpsertBatch(ctx, items)
	if err != nil {
		return nil, err
	}
	logger.Info("results: saved", "count", len(stored))
	return stored, nil
}

// List returns stored results. Limit defaults to DefaultLimit and is capped
// at MaxLimit; platform matching is case-insensitive.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.StoredResult, error) {
	f.Platform = strings.ToLower(strings.TrimSpace(f.Platform))
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	switch Order(strings.ToLower(string(f.Order))) {
	case "":
		f.Order = s.defaultOrder
	case OrderAsc:
		f.Order = OrderAsc
	case OrderDesc:
		f.Order = OrderDesc
	default:
		return nil, ErrInvalidOrder
	}
	return s.repo.List(ctx, f)
}

// Get returns one stored result.
func (s *Service) Get(ctx context.Context, id int64) (*domain.StoredResult, error) {
	return s.repo.Get(ctx, id)
}

// UpdateNote replaces the notes of a stored result.
func (s *Service) UpdateNote(ctx context.Context, id int64, note string) (*domain.StoredResult, error) {
	return s.repo.UpdateNote(ctx, id, note)
}

// Export writes every stored result as CSV, ordered by id. It returns
// ErrNoResults when nothing is stored, before writing anything.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, ErrNoResults
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return 0, err
	}
	for _, r := range rows {
		if err := cw.Write(exportRecord(r)); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}

func exportRecord(r domain.StoredResult) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		string(r.Platform),
		r.URL,
		r.Creator,
		r.CampaignID,
		formatTime(r.PostedAt),
		strconv.FormatInt(r.Views, 10),
		strconv.FormatInt(r.Likes, 10),
		strconv.FormatInt(r.Comments, 10),
		strconv.FormatFloat(math.Round(r.EngagementRate*10000)/10000, 'f', -1, 64),
		r.Notes,
		formatTime(&r.FetchedAt),
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
