package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ihorkly/bookix/internal/domain"
	"github.com/ihorkly/bookix/internal/repository"
	postgresrepo "github.com/ihorkly/bookix/internal/repository/postgres"
	redisrepo "github.com/ihorkly/bookix/internal/repository/redis"
)

type Config struct {
	EventSummaryTTL time.Duration
	CityEventsTTL   time.Duration
	CountsTTL       time.Duration
}

// Service answers catalog reads: events, showings, availability counts.
// Summaries are cached with short TTLs; the seat store stays the only
// authority for anything booking-related.
type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventSummaryTTL <= 0 {
		cfg.EventSummaryTTL = 60 * time.Second
	}

	if cfg.CityEventsTTL <= 0 {
		cfg.CityEventsTTL = 5 * time.Second
	}

	if cfg.CountsTTL <= 0 {
		cfg.CountsTTL = 15 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// GetEvent retrieves an event by ID through the summary cache.
func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "service.catalog.GetEvent"

	key := redisrepo.KeyEventSummary(id)

	event, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.EventSummaryTTL,
		func(ctx context.Context) (domain.Event, error) {
			e, err := s.store.Catalog().GetEvent(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Event{}, ErrEventNotFound
				}

				return domain.Event{}, err
			}

			return *e, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &event, nil
}

// ExploreCity lists events playing in a city. The entry is cached for a few
// seconds only; new events show up almost immediately without invalidation
// plumbing.
func (s *Service) ExploreCity(ctx context.Context, city string) ([]domain.Event, error) {
	const op = "service.catalog.ExploreCity"

	key := redisrepo.KeyCityEvents(city)

	events, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.CityEventsTTL,
		func(ctx context.Context) ([]domain.Event, error) {
			return s.store.Catalog().ListEventsByCity(ctx, city)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// ListShowings lists an event's showings in a city on a given day.
func (s *Service) ListShowings(
	ctx context.Context,
	eventID int64,
	city string,
	day time.Time,
) ([]domain.Showing, error) {
	const op = "service.catalog.ListShowings"

	showings, err := s.store.Catalog().ListShowings(ctx, eventID, city, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return showings, nil
}

// BookingDetails returns the header data of a seat-picking screen.
func (s *Service) BookingDetails(ctx context.Context, showingID int64) (*domain.BookingDetails, error) {
	const op = "service.catalog.BookingDetails"

	d, err := s.store.Catalog().BookingDetails(ctx, showingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrShowingNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return d, nil
}

// Counts returns a showing's seat counts by status, cached briefly.
func (s *Service) Counts(ctx context.Context, showingID int64) (*domain.ShowingCounts, error) {
	const op = "service.catalog.Counts"

	key := redisrepo.KeyShowingCounts(showingID)

	counts, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.CountsTTL,
		func(ctx context.Context) (domain.ShowingCounts, error) {
			sc, err := s.store.Seats().CountsByStatus(ctx, showingID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.ShowingCounts{}, ErrShowingNotFound
				}

				return domain.ShowingCounts{}, err
			}

			return *sc, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &counts, nil
}
