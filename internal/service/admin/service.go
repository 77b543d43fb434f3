package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/ihorkly/bookix/internal/domain"
	"github.com/ihorkly/bookix/internal/repository"
	postgresrepo "github.com/ihorkly/bookix/internal/repository/postgres"
	redisrepo "github.com/ihorkly/bookix/internal/repository/redis"
	"github.com/ihorkly/bookix/internal/uow"
)

// Service owns catalog writes. Venue layout templates are validated once at
// creation and never mutated afterwards; booking code only reads them.
type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	uow   *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
		uow:   uow.NewUoW(store),
	}
}

// CreateVenue creates a venue with its seat-layout template and returns its
// ID. The template must parse; a venue with an unreadable grid could never be
// booked.
func (s *Service) CreateVenue(ctx context.Context, v domain.Venue) (int64, error) {
	const op = "service.admin.CreateVenue"

	if _, err := domain.ParseLayoutTemplate(v.SeatLayout); err != nil {
		return 0, fmt.Errorf("%s: %w: %v", op, ErrBadLayout, err)
	}

	var id int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Admin().With(tx).CreateVenue(ctx, v)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrVenueConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})

	return id, err
}

// CreateEvent creates an event together with its initial showings.
func (s *Service) CreateEvent(
	ctx context.Context,
	e domain.Event,
	showings []domain.Showing,
) (int64, error) {
	const op = "service.admin.CreateEvent"

	var eventID int64

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		var err error
		eventID, err = s.store.Admin().With(tx).CreateEvent(ctx, e)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrEventConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if len(showings) > 0 {
			for i := range showings {
				showings[i].EventID = eventID
			}

			if err := s.store.Admin().With(tx).BatchCreateShowings(ctx, showings); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%s: %w", op, ErrUnknownVenue)
				}
				if errors.Is(err, repository.ErrConflict) {
					return fmt.Errorf("%s: %w", op, ErrShowingConflict)
				}
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		return nil
	})

	return eventID, err
}

// AddShowing schedules an existing event at a venue.
func (s *Service) AddShowing(ctx context.Context, sh domain.Showing) (int64, error) {
	const op = "service.admin.AddShowing"

	var id int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Admin().With(tx).CreateShowing(ctx, sh)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrUnknownVenue)
			}
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrShowingConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})

	return id, err
}
