// Package repository opens the results store named by a database URL.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ignite/kol-metrics/internal/repository/postgres"
	"github.com/ignite/kol-metrics/internal/repository/sqlite"
	"github.com/ignite/kol-metrics/internal/service/results"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Driver names accepted by database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = sqlite.DriverName
)

// Store bundles an open database with the results repository on top of it.
type Store struct {
	DB      *sql.DB
	Driver  string
	Results results.Repository
}

// ParseURL maps a database URL to a driver name and data source.
// postgres:// and postgresql:// URLs select PostgreSQL. sqlite:///path,
// sqlite://, and bare file paths select SQLite.
func ParseURL(databaseURL string) (driver, dsn string, err error) {
	u := strings.TrimSpace(databaseURL)
	lower := strings.ToLower(u)
	switch {
	case u == "":
		return "", "", fmt.Errorf("database URL is empty")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres, u, nil
	case lower == "sqlite://", lower == "sqlite:///:memory:":
		return DriverSQLite, ":memory:", nil
	case strings.HasPrefix(lower, "sqlite:///"):
		return DriverSQLite, u[len("sqlite:///"):], nil
	case strings.Contains(lower, "://"):
		return "", "", fmt.Errorf("unsupported database URL scheme in %q", redactURL(u))
	default:
		return DriverSQLite, u, nil
	}
}

// Open connects to databaseURL, verifies the connection, and creates the
// results schema if needed.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	driver, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	var (
		db   *sql.DB
		repo results.Repository
	)
	switch driver {
	case DriverPostgres:
		db, err = sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		repo = postgres.NewResultsRepo(db)
	default:
		db, err = sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		repo = sqlite.NewResultsRepo(db)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{DB: db, Driver: driver, Results: repo}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.DB.Close() }

// redactURL hides credentials in a connection string for error messages.
func redactURL(u string) string {
	at := strings.LastIndex(u, "@")
	scheme := strings.Index(u, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return u
	}
	return u[:scheme+3] + "***" + u[at:]
}
