package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/service/results"
)

const resultColumns = `id, platform, url, creator, campaign_id, posted_at, views, likes, comments, engagement_rate, notes, fetched_at`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS results (
	id              BIGSERIAL PRIMARY KEY,
	platform        VARCHAR(32)  NOT NULL,
	url             VARCHAR(512) NOT NULL,
	creator         VARCHAR(255),
	campaign_id     VARCHAR(255),
	posted_at       TIMESTAMPTZ,
	views           BIGINT NOT NULL DEFAULT 0,
	likes           BIGINT NOT NULL DEFAULT 0,
	comments        BIGINT NOT NULL DEFAULT 0,
	engagement_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	notes           VARCHAR(512),
	fetched_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uq_results_url UNIQUE (url)
);
CREATE INDEX IF NOT EXISTS idx_results_fetched_at ON results (fetched_at, id);
CREATE INDEX IF NOT EXISTS idx_results_platform ON results (platform);
`

// Creator and posted_at keep their stored values unless the new ones are
// non-empty; everything else is overwritten.
const upsertSQL = `
INSERT INTO results (platform, url, creator, campaign_id, posted_at, views, likes, comments, engagement_rate, notes, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
ON CONFLICT (url) DO UPDATE SET
	platform        = EXCLUDED.platform,
	creator         = COALESCE(NULLIF(EXCLUDED.creator, ''), results.creator),
	campaign_id     = EXCLUDED.campaign_id,
	posted_at       = COALESCE(EXCLUDED.posted_at, results.posted_at),
	views           = EXCLUDED.views,
	likes           = EXCLUDED.likes,
	comments        = EXCLUDED.comments,
	engagement_rate = EXCLUDED.engagement_rate,
	notes           = EXCLUDED.notes,
	fetched_at      = NOW()
RETURNING ` + resultColumns

// ResultsRepo implements results.Repository against PostgreSQL.
type ResultsRepo struct{ db *sql.DB }

// NewResultsRepo creates a Postgres-backed results repository.
func NewResultsRepo(db *sql.DB) *ResultsRepo { return &ResultsRepo{db: db} }

func (r *ResultsRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure results schema: %w", err)
	}
	return nil
}

func (r *ResultsRepo) UpsertBatch(ctx context.Context, items []domain.EnrichedResult) ([]domain.StoredResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	out := make([]domain.StoredResult, 0, len(items))
	for _, it := range items {
		row := tx.QueryRowContext(ctx, upsertSQL,
			string(it.Platform), it.URL, nullString(it.Creator), nullString(it.CampaignID),
			it.PostedAt, it.Views, it.Likes, it.Comments, it.EngagementRate, nullString(it.Notes),
		)
		stored, err := scanResult(row)
		if err != nil {
			return nil, fmt.Errorf("upsert result %s: %w", it.URL, err)
		}
		out = append(out, *stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert: %w", err)
	}
	return out, nil
}

func (r *ResultsRepo) List(ctx context.Context, f results.ListFilter) ([]domain.StoredResult, error) {
	dir := "DESC"
	if f.Order == results.OrderAsc {
		dir = "ASC"
	}
	query := `SELECT ` + resultColumns + ` FROM results`
	args := []any{}
	if f.Platform != "" {
		args = append(args, f.Platform)
		query += ` WHERE platform = $1`
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(` ORDER BY fetched_at %s, id %s LIMIT $%d`, dir, dir, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return collect(rows)
}

func (r *ResultsRepo) Get(ctx context.Context, id int64) (*domain.StoredResult, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM results WHERE id = $1`, id)
	res, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, results.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	return res, nil
}

func (r *ResultsRepo) UpdateNote(ctx context.Context, id int64, note string) (*domain.StoredResult, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE results SET notes = $2 WHERE id = $1 RETURNING `+resultColumns,
		id, nullString(note),
	)
	res, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, results.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return res, nil
}

func (r *ResultsRepo) All(ctx context.Context) ([]domain.StoredResult, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+resultColumns+` FROM results ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("all results: %w", err)
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*domain.StoredResult, error) {
	var (
		res                        domain.StoredResult
		platform                   string
		creator, campaignID, notes sql.NullString
		postedAt                   sql.NullTime
	)
	err := s.Scan(&res.ID, &platform, &res.URL, &creator, &campaignID, &postedAt,
		&res.Views, &res.Likes, &res.Comments, &res.EngagementRate, &notes, &res.FetchedAt)
	if err != nil {
		return nil, err
	}
	res.Platform = domain.Platform(platform)
	res.Creator = creator.String
	res.CampaignID = campaignID.String
	res.Notes = notes.String
	if postedAt.Valid {
		t := postedAt.Time.UTC()
		res.PostedAt = &t
	}
	res.FetchedAt = res.FetchedAt.UTC()
	return &res, nil
}

func collect(rows *sql.Rows) ([]domain.StoredResult, error) {
	defer rows.Close()
	out := []domain.StoredResult{}
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
