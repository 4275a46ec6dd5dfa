package results

import (
	"context"

	"github.com/ignite/kol-metrics/internal/domain"
)

// Order is the fetched_at sort direction for listings.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Repository defines the data access contract for stored results.
// Implementations must be safe for concurrent use.
type Repository interface {
	// EnsureSchema creates the results table and indexes if missing.
	EnsureSchema(ctx context.Context) error

	// UpsertBatch inserts or updates every item by URL in one transaction
	// and returns the stored rows in input order.
	UpsertBatch(ctx context.Context, items []domain.EnrichedResult) ([]domain.StoredResult, error)

	// List returns results ordered by fetched_at (ties broken by id in the
	// same direction).
	List(ctx context.Context, f ListFilter) ([]domain.StoredResult, error)

	// Get returns one result. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id int64) (*domain.StoredResult, error)

	// UpdateNote replaces the notes of one result. Returns ErrNotFound if
	// it doesn't exist.
	UpdateNote(ctx context.Context, id int64, note string) (*domain.StoredResult, error)

	// All returns every result ordered by id.
	All(ctx context.Context) ([]domain.StoredResult, error)
}

// ListFilter controls filtering and ordering for result listings.
type ListFilter struct {
	Platform string
	Limit    int
	Order    Order
}
