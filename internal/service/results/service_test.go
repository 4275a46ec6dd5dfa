package results_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/service/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory results repository for unit testing.
type memRepo struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[string]*domain.StoredResult // keyed by url
	now      time.Time
	lastList results.ListFilter
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[string]*domain.StoredResult), now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memRepo) EnsureSchema(context.Context) error { return nil }

func (m *memRepo) UpsertBatch(_ context.Context, items []domain.EnrichedResult) ([]domain.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.StoredResult, 0, len(items))
	for _, it := range items {
		m.now = m.now.Add(time.Second)
		existing, ok := m.rows[it.URL]
		if !ok {
			m.nextID++
			existing = &domain.StoredResult{ID: m.nextID, EnrichedResult: it}
			m.rows[it.URL] = existing
		} else {
			creator, posted := existing.Creator, existing.PostedAt
			existing.EnrichedResult = it
			if it.Creator == "" {
				existing.Creator = creator
			}
			if it.PostedAt == nil {
				existing.PostedAt = posted
			}
		}
		existing.FetchedAt = m.now
		out = append(out, *existing)
	}
	return out, nil
}

func (m *memRepo) sorted() []domain.StoredResult {
	var out []domain.StoredResult
	for _, r := range m.rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRepo) List(_ context.Context, f results.ListFilter) ([]domain.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = f
	var out []domain.StoredResult
	for _, r := range m.sorted() {
		if f.Platform != "" && string(r.Platform) != f.Platform {
			continue
		}
		out = append(out, r)
	}
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*domain.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, results.ErrNotFound
}

func (m *memRepo) UpdateNote(_ context.Context, id int64, note string) (*domain.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			r.Notes = note
			cp := *r
			return &cp, nil
		}
	}
	return nil, results.ErrNotFound
}

func (m *memRepo) All(context.Context) ([]domain.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func TestSave_Upsert(t *testing.T) {
	repo := newMemRepo()
	svc := results.NewService(repo, "")
	ctx := context.Background()
	posted := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Save(ctx, []domain.EnrichedResult{{
		Platform: domain.PlatformTikTok, URL: "https://tiktok.com/@a/video/1",
		Creator: "alice", PostedAt: &posted, Views: 10, Notes: "n1",
	}})
	require.NoError(t, err)

	stored, err := svc.Save(ctx, []domain.EnrichedResult{{
		Platform: domain.PlatformTikTok, URL: "https://tiktok.com/@a/video/1", Views: 20,
	}})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	got := stored[0]
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, int64(20), got.Views)
	assert.Equal(t, "alice", got.Creator)
	assert.Equal(t, &posted, got.PostedAt)
	assert.Empty(t, got.Notes)
}

func TestSave_Empty(t *testing.T) {
	stored, err := results.NewService(newMemRepo(), "").Save(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestList_Normalization(t *testing.T) {
	tests := []struct {
		name    string
		def     results.Order
		in      results.ListFilter
		want    results.ListFilter
		wantErr error
	}{
		{"defaults", "", results.ListFilter{}, results.ListFilter{Limit: 200, Order: results.OrderDesc}, nil},
		{"configured asc default", results.OrderAsc, results.ListFilter{}, results.ListFilter{Limit: 200, Order: results.OrderAsc}, nil},
		{"cap limit and lowercase", "", results.ListFilter{Limit: 5000, Platform: " YouTube ", Order: "ASC"}, results.ListFilter{Limit: 1000, Platform: "youtube", Order: results.OrderAsc}, nil},
		{"bad order", "", results.ListFilter{Order: "sideways"}, results.ListFilter{}, results.ErrInvalidOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			_, err := results.NewService(repo, tt.def).List(context.Background(), tt.in)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, repo.lastList)
		})
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	_, err := results.NewService(newMemRepo(), "").UpdateNote(context.Background(), 99, "x")
	assert.True(t, errors.Is(err, results.ErrNotFound))
}

func TestExport(t *testing.T) {
	repo := newMemRepo()
	svc := results.NewService(repo, "")
	ctx := context.Background()

	var buf bytes.Buffer
	_, err := svc.Export(ctx, &buf)
	assert.True(t, errors.Is(err, results.ErrNoResults))
	assert.Zero(t, buf.Len())

	posted := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	_, err = svc.Save(ctx, []domain.EnrichedResult{
		{Platform: domain.PlatformYouTube, URL: "https://youtu.be/a", Creator: "Chan, Inc", PostedAt: &posted, Views: 3, Likes: 1, EngagementRate: 33.333333},
		{Platform: domain.PlatformInstagram, URL: "https://instagram.com/p/b", Notes: "check"},
	})
	require.NoError(t, err)

	n, err := svc.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t,
		"id,platform,url,creator,campaign_id,posted_at,views,likes,comments,engagement_rate,notes,fetched_at\n"+
			"1,youtube,https://youtu.be/a,\"Chan, Inc\",,2023-01-15T00:00:00Z,3,1,0,33.3333,,2024-06-01T00:00:01Z\n"+
			"2,instagram,https://instagram.com/p/b,,,,0,0,0,0,check,2024-06-01T00:00:02Z\n",
		buf.String())
}
