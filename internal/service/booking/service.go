package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ihorkly/bookix/internal/domain"
	"github.com/ihorkly/bookix/internal/repository"
	redisrepo "github.com/ihorkly/bookix/internal/repository/redis"
	"github.com/ihorkly/bookix/internal/uow"
)

// SeatTx is the seat access the engine uses inside one transaction. The
// production implementation binds a seat repository to the transaction handle.
type SeatTx interface {
	FindTaken(ctx context.Context, showingID int64, sels []domain.SeatSelection) ([]domain.SeatSelection, error)
	Reserve(ctx context.Context, showingID int64, sels []domain.SeatSelection) ([]uuid.UUID, error)
	Confirm(ctx context.Context, showingID int64, seatIDs []uuid.UUID) error
	Release(ctx context.Context, showingID int64, seatIDs []uuid.UUID) (int64, error)
}

// SeatStore opens a Serializable transaction around fn and runs hooks
// registered through after only once the commit is durable. A failed commit
// must drop the hooks.
type SeatStore interface {
	InTx(ctx context.Context, fn func(ctx context.Context, seats SeatTx, after func(uow.AfterCommit)) error) error
	ReleaseStale(ctx context.Context, olderThan time.Duration) ([]int64, error)
}

// Invalidator drops a showing's derived cache entries.
type Invalidator interface {
	InvalidateShowing(ctx context.Context, showingID int64) error
}

// Notifier publishes a confirmation event for downstream delivery (ticket
// e-mails and the like). Publishing is best-effort: a broker outage never
// fails a booking.
type Notifier interface {
	PublishTicketsConfirmed(ctx context.Context, showingID int64, seatIDs []uuid.UUID) error
}

type Config struct {
	// ReservationTTL is how long a reservation may sit unconfirmed before the
	// sweeper releases it back to available.
	ReservationTTL time.Duration
	SweepInterval  time.Duration
}

// Service is the seat reservation and confirmation engine. All correctness
// under concurrent demand comes from the store's Serializable transactions;
// the service holds no locks of its own, so any number of processes can run
// it side by side.
type Service struct {
	store    SeatStore
	cache    Invalidator
	pubsub   *redisrepo.ShowingsPubSub
	limiter  *redisrepo.SlidingWindowLimiter
	notifier Notifier
	logger   *slog.Logger
	cfg      Config
}

func New(
	store SeatStore,
	cache Invalidator,
	pubsub *redisrepo.ShowingsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	notifier Notifier,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = 10 * time.Minute
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:    store,
		cache:    cache,
		pubsub:   pubsub,
		limiter:  limiter,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

// Reserve transitions the selected seats of a showing from available to
// reserved and returns the seat IDs in selection order.
//
// The whole batch runs in one Serializable transaction: first a conflict
// query for any selection already reserved/booked, then a per-seat upsert
// (rows are created lazily, absence means available). One conflicting seat
// fails everything; there is no partial reservation. A store-level
// serialization failure means a concurrent transaction won the same seats and
// is reported as ErrSeatTaken, never retried here. The caller may safely
// re-issue the call since the conflict check re-reads current state.
//
// Returns:
//   - booking.ErrInvalidSelection on empty, blank or duplicate selections
//     (checked before any store access).
//   - booking.ErrSeatTaken if any requested seat is unavailable.
//   - booking.ErrShowingNotFound for an unknown showing.
//   - booking.ErrRateLimited when rlKey exhausted its window.
func (s *Service) Reserve(
	ctx context.Context,
	showingID int64,
	sels []domain.SeatSelection,
	rlKey string,
) ([]uuid.UUID, error) {
	const op = "service.booking.Reserve"

	if err := validateSelections(sels); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w: retry in %s", op, ErrRateLimited, retry)
		}
	}

	var seatIDs []uuid.UUID

	err := s.store.InTx(ctx, func(
		ctx context.Context,
		seats SeatTx,
		after func(uow.AfterCommit),
	) error {
		taken, err := seats.FindTaken(ctx, showingID, sels)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if len(taken) > 0 {
			return fmt.Errorf("%s:%w", op, ErrSeatTaken)
		}

		ids, err := seats.Reserve(ctx, showingID, sels)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		seatIDs = ids

		after(func(ctx context.Context) {
			s.invalidate(ctx, showingID)
		})

		return nil
	})
	if err != nil {
		return nil, s.classify(op, err)
	}

	return seatIDs, nil
}

// Confirm transitions reserved seats to booked after the payment collaborator
// has verified payment. The transition is guarded: a seat that is not
// currently reserved rejects the whole batch with ErrSeatsNotReserved, so a
// stale or forged seat ID cannot force-book an available seat.
func (s *Service) Confirm(ctx context.Context, showingID int64, seatIDs []uuid.UUID) error {
	const op = "service.booking.Confirm"

	if len(seatIDs) == 0 {
		return fmt.Errorf("%s:%w: no seats", op, ErrInvalidSelection)
	}

	err := s.store.InTx(ctx, func(
		ctx context.Context,
		seats SeatTx,
		after func(uow.AfterCommit),
	) error {
		if err := seats.Confirm(ctx, showingID, seatIDs); err != nil {
			if errors.Is(err, repository.ErrNotReserved) {
				return fmt.Errorf("%s:%w", op, ErrSeatsNotReserved)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			s.invalidate(ctx, showingID)

			if s.notifier != nil {
				if err := s.notifier.PublishTicketsConfirmed(ctx, showingID, seatIDs); err != nil {
					s.logger.Warn("tickets confirmed notification failed",
						"showing_id", showingID, "error", err)
				}
			}
		})

		return nil
	})
	if err != nil {
		return s.classify(op, err)
	}

	return nil
}

// Release moves reserved seats back to available, the cancellation path.
// Already-booked seats stay booked; releasing them requires a refund flow
// this engine does not own.
func (s *Service) Release(ctx context.Context, showingID int64, seatIDs []uuid.UUID) (int64, error) {
	const op = "service.booking.Release"

	if len(seatIDs) == 0 {
		return 0, fmt.Errorf("%s:%w: no seats", op, ErrInvalidSelection)
	}

	var released int64

	err := s.store.InTx(ctx, func(
		ctx context.Context,
		seats SeatTx,
		after func(uow.AfterCommit),
	) error {
		n, err := seats.Release(ctx, showingID, seatIDs)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		released = n

		if n > 0 {
			after(func(ctx context.Context) {
				s.invalidate(ctx, showingID)
			})
		}

		return nil
	})
	if err != nil {
		return 0, s.classify(op, err)
	}

	return released, nil
}

// ExpireStale releases reservations older than the configured TTL and
// invalidates the layout cache of every showing that changed.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	const op = "service.booking.ExpireStale"

	showings, err := s.store.ReleaseStale(ctx, s.cfg.ReservationTTL)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	for _, id := range showings {
		s.invalidate(ctx, id)
	}

	return len(showings), nil
}

// RunSweeper periodically expires stale reservations until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.ExpireStale(ctx)
			if err != nil {
				s.logger.Error("reservation sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("released stale reservations", "showings", n)
			}
		}
	}
}

// invalidate drops the showing's derived cache entries and fans the change
// out. Both are best-effort: the cache carries its own freshness window, so a
// failed delete degrades to bounded staleness, never to a booking error.
func (s *Service) invalidate(ctx context.Context, showingID int64) {
	if err := s.cache.InvalidateShowing(ctx, showingID); err != nil {
		s.logger.Warn("layout cache invalidation failed",
			"showing_id", showingID, "error", err)
	}

	if s.pubsub != nil {
		_ = s.pubsub.PublishShowingChanged(ctx, showingID)
	}
}

// classify maps store-level outcomes onto the service's error taxonomy.
// Serialization failures and unique-key races are both "somebody else got
// there first" and surface as ErrSeatTaken.
func (s *Service) classify(op string, err error) error {
	switch {
	case errors.Is(err, ErrSeatTaken),
		errors.Is(err, ErrSeatsNotReserved),
		errors.Is(err, ErrInvalidSelection):
		return err
	case errors.Is(err, repository.ErrSerialization),
		errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s:%w", op, ErrSeatTaken)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s:%w", op, ErrShowingNotFound)
	default:
		return err
	}
}

func validateSelections(sels []domain.SeatSelection) error {
	if len(sels) == 0 {
		return fmt.Errorf("%w: no seats selected", ErrInvalidSelection)
	}

	seen := make(map[domain.SeatSelection]struct{}, len(sels))
	for _, sel := range sels {
		if sel.Row == "" || sel.Number == "" {
			return fmt.Errorf("%w: row and seat number are required", ErrInvalidSelection)
		}

		if _, dup := seen[sel]; dup {
			return fmt.Errorf("%w: duplicate seat %s%s", ErrInvalidSelection, sel.Row, sel.Number)
		}
		seen[sel] = struct{}{}
	}

	return nil
}
