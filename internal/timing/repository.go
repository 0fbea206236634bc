package timing

import (
	"context"

	"stanza/internal/catalog"
)

// Repository is the storage surface the engine reads and writes inside one
// transaction.
type Repository interface {
	Track(ctx context.Context, id int64) (*catalog.Track, error)
	Lines(ctx context.Context, fragmentID int64) ([]catalog.Line, error)
	Timings(ctx context.Context, trackID int64) (map[int64]float64, error)
	UpsertTiming(ctx context.Context, trackID, lineID int64, end float64) error
	SetTrackStatus(ctx context.Context, id int64, status catalog.Status) (bool, error)
}

// Transactor runs fn against a transaction-bound Repository, committing when
// fn returns nil and rolling back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repository) error) error
}

// CatalogTx adapts a catalog store to Transactor.
func CatalogTx(store *catalog.Store) Transactor {
	return catalogTx{store: store}
}

type catalogTx struct {
	store *catalog.Store
}

func (c catalogTx) WithinTx(ctx context.Context, fn func(Repository) error) error {
	return c.store.WithinTx(ctx, func(r *catalog.Repo) error {
		return fn(r)
	})
}
