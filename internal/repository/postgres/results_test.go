package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/service/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "platform", "url", "creator", "campaign_id", "posted_at", "views", "likes", "comments", "engagement_rate", "notes", "fetched_at"}

func setupRepo(t *testing.T) (*ResultsRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewResultsRepo(db), mock
}

func TestUpsertBatch(t *testing.T) {
	repo, mock := setupRepo(t)
	fetched := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posted := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO results")).
		WithArgs("youtube", "https://youtu.be/a", "Chan", nil, posted, int64(100), int64(5), int64(5), 10.0, nil).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(7, "youtube", "https://youtu.be/a", "Chan", nil, posted, 100, 5, 5, 10.0, nil, fetched))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (url) DO UPDATE")).
		WithArgs("tiktok", "https://tiktok.com/@x/video/1", nil, "c1", nil, int64(0), int64(0), int64(0), 0.0, "note").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(8, "tiktok", "https://tiktok.com/@x/video/1", "kept", "c1", posted, 0, 0, 0, 0.0, "note", fetched))
	mock.ExpectCommit()

	stored, err := repo.UpsertBatch(context.Background(), []domain.EnrichedResult{
		{Platform: domain.PlatformYouTube, URL: "https://youtu.be/a", Creator: "Chan", PostedAt: &posted, Views: 100, Likes: 5, Comments: 5, EngagementRate: 10},
		{Platform: domain.PlatformTikTok, URL: "https://tiktok.com/@x/video/1", CampaignID: "c1", Notes: "note"},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)

	assert.Equal(t, int64(7), stored[0].ID)
	assert.Equal(t, "", stored[0].CampaignID)
	assert.Equal(t, fetched, stored[0].FetchedAt)
	assert.Equal(t, "kept", stored[1].Creator)
	require.NotNil(t, stored[1].PostedAt)
	assert.Equal(t, posted, *stored[1].PostedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertBatch_RollsBackOnError(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO results")).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err := repo.UpsertBatch(context.Background(), []domain.EnrichedResult{{Platform: domain.PlatformYouTube, URL: "https://youtu.be/a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	repo, mock := setupRepo(t)
	fetched := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM results WHERE platform = $1 ORDER BY fetched_at ASC, id ASC LIMIT $2")).
		WithArgs("instagram", 50).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "instagram", "https://instagram.com/p/a", nil, nil, nil, 1, 0, 0, 0.0, nil, fetched))

	got, err := repo.List(context.Background(), results.ListFilter{Platform: "instagram", Limit: 50, Order: results.OrderAsc})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].PostedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_DefaultDescending(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM results ORDER BY fetched_at DESC, id DESC LIMIT $1")).
		WithArgs(200).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background(), results.ListFilter{Limit: 200, Order: results.OrderDesc})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM results WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Get(context.Background(), 42)
	assert.True(t, errors.Is(err, results.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNote(t *testing.T) {
	repo, mock := setupRepo(t)
	fetched := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE results SET notes = $2 WHERE id = $1")).
		WithArgs(int64(3), "follow up").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(3, "tiktok", "https://tiktok.com/@x/video/1", nil, nil, nil, 0, 0, 0, 0.0, "follow up", fetched))

	got, err := repo.UpdateNote(context.Background(), 3, "follow up")
	require.NoError(t, err)
	assert.Equal(t, "follow up", got.Notes)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE results SET notes")).
		WithArgs(int64(4), "x").
		WillReturnRows(sqlmock.NewRows(columns))
	_, err = repo.UpdateNote(context.Background(), 4, "x")
	assert.True(t, errors.Is(err, results.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS results")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
