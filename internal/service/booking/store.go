package booking

import (
	"context"
	"time"

	postgresrepo "github.com/ihorkly/bookix/internal/repository/postgres"
	"github.com/ihorkly/bookix/internal/uow"
)

// pgSeatStore adapts the pgx store to the engine's SeatStore seam: every InTx
// call is one Serializable unit of work with the seat repository bound to its
// transaction handle.
type pgSeatStore struct {
	store *postgresrepo.Store
	uow   *uow.UoW
}

func NewSeatStore(store *postgresrepo.Store) SeatStore {
	return &pgSeatStore{store: store, uow: uow.NewUoW(store)}
}

func (s *pgSeatStore) InTx(
	ctx context.Context,
	fn func(ctx context.Context, seats SeatTx, after func(uow.AfterCommit)) error,
) error {
	return s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		return fn(ctx, s.store.Seats().With(tx), after)
	})
}

func (s *pgSeatStore) ReleaseStale(ctx context.Context, olderThan time.Duration) ([]int64, error) {
	return s.store.Seats().ReleaseStale(ctx, olderThan)
}
