package repository

import (
	"context"
	"testing"

	"github.com/ignite/kol-metrics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		in      string
		driver  string
		dsn     string
		wantErr bool
	}{
		{"postgres://u:p@db:5432/kol?sslmode=disable", DriverPostgres, "postgres://u:p@db:5432/kol?sslmode=disable", false},
		{"postgresql://db/kol", DriverPostgres, "postgresql://db/kol", false},
		{"sqlite:///./kol_results.sqlite3", DriverSQLite, "./kol_results.sqlite3", false},
		{"sqlite:////var/data/kol.db", DriverSQLite, "/var/data/kol.db", false},
		{"sqlite://", DriverSQLite, ":memory:", false},
		{"kol.db", DriverSQLite, "kol.db", false},
		{"mysql://u:secret@db/kol", "", "", true},
		{"  ", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			driver, dsn, err := ParseURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.NotContains(t, err.Error(), "secret")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
		})
	}
}

func TestOpen_SQLiteMemory(t *testing.T) {
	store, err := Open(context.Background(), "sqlite://")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, DriverSQLite, store.Driver)
	stored, err := store.Results.UpsertBatch(context.Background(), []domain.EnrichedResult{
		{Platform: domain.PlatformYouTube, URL: "https://youtu.be/a"},
	})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
