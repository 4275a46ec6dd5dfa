// Package sqlite implements the results repository on an embedded SQLite
// database, the default store for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/ignite/kol-metrics/internal/service/results"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Timestamps are stored as fixed-width UTC text so they sort correctly.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const resultColumns = `id, platform, url, creator, campaign_id, posted_at, views, likes, comments, engagement_rate, notes, fetched_at`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS results (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	platform        TEXT    NOT NULL,
	url             TEXT    NOT NULL,
	creator         TEXT,
	campaign_id     TEXT,
	posted_at       TEXT,
	views           INTEGER NOT NULL DEFAULT 0,
	likes           INTEGER NOT NULL DEFAULT 0,
	comments        INTEGER NOT NULL DEFAULT 0,
	engagement_rate REAL    NOT NULL DEFAULT 0,
	notes           TEXT,
	fetched_at      TEXT    NOT NULL,
	CONSTRAINT uq_results_url UNIQUE (url)
);
CREATE INDEX IF NOT EXISTS idx_results_fetched_at ON results (fetched_at, id);
CREATE INDEX IF NOT EXISTS idx_results_platform ON results (platform);
`

const upsertSQL = `
INSERT INTO results (platform, url, creator, campaign_id, posted_at, views, likes, comments, engagement_rate, notes, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url) DO UPDATE SET
	platform        = excluded.platform,
	creator         = COALESCE(NULLIF(excluded.creator, ''), results.creator),
	campaign_id     = excluded.campaign_id,
	posted_at       = COALESCE(excluded.posted_at, results.posted_at),
	views           = excluded.views,
	likes           = excluded.likes,
	comments        = excluded.comments,
	engagement_rate = excluded.engagement_rate,
	notes           = excluded.notes,
	fetched_at      = excluded.fetched_at
RETURNING ` + resultColumns

// Open opens a SQLite database at path (":memory:" for a private in-memory
// database). A single connection is used so writers never contend.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	return db, nil
}

// ResultsRepo implements results.Repository against SQLite.
type ResultsRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewResultsRepo creates a SQLite-backed results repository.
func NewResultsRepo(db *sql.DB) *ResultsRepo { return &ResultsRepo{db: db, now: time.Now} }

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

	now := formatTime(r.now())
	out := make([]domain.StoredResult, 0, len(items))
	for _, it := range items {
		var posted any
		if it.PostedAt != nil {
			posted = formatTime(*it.PostedAt)
		}
		row := tx.QueryRowContext(ctx, upsertSQL,
			string(it.Platform), it.URL, nullString(it.Creator), nullString(it.CampaignID),
			posted, it.Views, it.Likes, it.Comments, it.EngagementRate, nullString(it.Notes), now,
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
		query += ` WHERE platform = ?`
		args = append(args, f.Platform)
	}
	query += fmt.Sprintf(` ORDER BY fetched_at %s, id %s LIMIT ?`, dir, dir)
	args = append(args, f.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return collect(rows)
}

func (r *ResultsRepo) Get(ctx context.Context, id int64) (*domain.StoredResult, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM results WHERE id = ?`, id)
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
		`UPDATE results SET notes = ? WHERE id = ? RETURNING `+resultColumns,
		nullString(note), id,
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
		platform, fetchedAt        string
		creator, campaignID, notes sql.NullString
		postedAt                   sql.NullString
	)
	err := s.Scan(&res.ID, &platform, &res.URL, &creator, &campaignID, &postedAt,
		&res.Views, &res.Likes, &res.Comments, &res.EngagementRate, &notes, &fetchedAt)
	if err != nil {
		return nil, err
	}
	res.Platform = domain.Platform(platform)
	res.Creator = creator.String
	res.CampaignID = campaignID.String
	res.Notes = notes.String
	if postedAt.Valid {
		t, err := time.Parse(timeLayout, postedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse posted_at %q: %w", postedAt.String, err)
		}
		res.PostedAt = &t
	}
	if res.FetchedAt, err = time.Parse(timeLayout, fetchedAt); err != nil {
		return nil, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
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

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
