package service

import (
	"log/slog"

	postgres "github.com/ihorkly/bookix/internal/repository/postgres"
	redis "github.com/ihorkly/bookix/internal/repository/redis"
	"github.com/ihorkly/bookix/internal/service/admin"
	"github.com/ihorkly/bookix/internal/service/auth"
	"github.com/ihorkly/bookix/internal/service/booking"
	"github.com/ihorkly/bookix/internal/service/catalog"
	"github.com/ihorkly/bookix/internal/service/layout"
)

type Services struct {
	Booking *booking.Service
	Layout  *layout.Service
	Catalog *catalog.Service
	Admin   *admin.Service
	Auth    *auth.Service
}

type Config struct {
	Booking booking.Config
	Layout  layout.Config
	Catalog catalog.Config
	Auth    auth.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.ShowingsPubSub,
	limiter *redis.SlidingWindowLimiter,
	notifier booking.Notifier,
	logger *slog.Logger,
	cfg Config,
) *Services {
	return &Services{
		Booking: booking.New(booking.NewSeatStore(store), cache, pubsub, limiter, notifier, logger, cfg.Booking),
		Layout:  layout.New(store, cache, logger, cfg.Layout),
		Catalog: catalog.New(store, cache, cfg.Catalog),
		Admin:   admin.New(store, cache),
		Auth:    auth.New(store, cfg.Auth),
	}
}
