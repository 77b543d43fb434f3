package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ihorkly/bookix/internal/domain"
	"github.com/ihorkly/bookix/internal/repository"
	postgresrepo "github.com/ihorkly/bookix/internal/repository/postgres"
	redisrepo "github.com/ihorkly/bookix/internal/repository/redis"
	"golang.org/x/sync/singleflight"
)

var ErrShowingNotFound = errors.New("showing not found")

type Config struct {
	// LayoutTTL bounds staleness if an invalidation is ever lost. Zero keeps
	// entries until explicitly invalidated.
	LayoutTTL time.Duration
}

// Service renders a showing's seat grid: the venue's immutable layout
// template overlaid with current seat rows from the store. Results live in
// the layout cache, which booking writers invalidate after every commit.
type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	sf     singleflight.Group
	logger *slog.Logger
	cfg    Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
		cfg:    cfg,
	}
}

// GetLayout returns the rendered grid for a showing, serving from cache when
// possible. Cache failures degrade to a recompute from the store, which stays
// authoritative; the cache only saves the join.
func (s *Service) GetLayout(ctx context.Context, showingID int64) (*domain.ShowingLayout, error) {
	const op = "service.layout.GetLayout"

	key := redisrepo.KeySeatLayout(showingID)

	cached, ok, err := redisrepo.GetJSON[domain.ShowingLayout](ctx, s.cache, key)
	if err != nil {
		s.logger.Warn("layout cache read failed", "showing_id", showingID, "error", err)
	}
	if ok {
		return &cached, nil
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		lay, err := s.compute(ctx, showingID)
		if err != nil {
			return nil, err
		}

		if err := redisrepo.SetJSON(ctx, s.cache, key, lay, s.cfg.LayoutTTL); err != nil {
			s.logger.Warn("layout cache write failed", "showing_id", showingID, "error", err)
		}

		return lay, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrShowingNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	lay, ok := v.(*domain.ShowingLayout)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected singleflight result", op)
	}

	return lay, nil
}

func (s *Service) compute(ctx context.Context, showingID int64) (*domain.ShowingLayout, error) {
	catalog := s.store.Catalog()

	showing, err := catalog.GetShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}

	venue, err := catalog.GetVenue(ctx, showing.VenueID)
	if err != nil {
		return nil, err
	}

	template, err := domain.ParseLayoutTemplate(venue.SeatLayout)
	if err != nil {
		return nil, err
	}

	seats, err := s.store.Seats().ListByShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}

	details, err := catalog.BookingDetails(ctx, showingID)
	if err != nil {
		return nil, err
	}

	return &domain.ShowingLayout{
		Rows:    domain.RenderLayout(template, seats),
		Details: *details,
	}, nil
}
