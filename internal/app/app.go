package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ihorkly/bookix/internal/config"
	"github.com/ihorkly/bookix/internal/notify"
	"github.com/ihorkly/bookix/internal/payment/razorpay"
	"github.com/ihorkly/bookix/internal/postgres"
	"github.com/ihorkly/bookix/internal/rabbitmq"
	"github.com/ihorkly/bookix/internal/redis"
	postgresrepo "github.com/ihorkly/bookix/internal/repository/postgres"
	redisrepo "github.com/ihorkly/bookix/internal/repository/redis"
	"github.com/ihorkly/bookix/internal/service"
	"github.com/ihorkly/bookix/internal/service/auth"
	"github.com/ihorkly/bookix/internal/service/booking"
	httpgin "github.com/ihorkly/bookix/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	booking    *booking.Service
	consumer   *notify.Consumer
	pubsub     *redisrepo.ShowingsPubSub
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	amqpConn, err := rabbitmq.New(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rabbitmq: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewShowingsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "reserve", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Initialize messaging
	publisher := notify.NewPublisher(amqpConn)
	consumer := notify.NewConsumer(amqpConn, store, logger)

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, publisher, logger, service.Config{
		Booking: booking.Config{},
		Auth:    auth.Config{JWTSecret: []byte(cfg.Auth.JWTSecret)},
	})

	payments := razorpay.New(razorpay.Config{
		KeyID:     cfg.Payment.KeyID,
		KeySecret: cfg.Payment.KeySecret,
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, payments, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		booking:  services.Booking,
		consumer: consumer,
		pubsub:   pubsub,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Release stale reservations in the background
	g.Go(func() error {
		if err := a.booking.RunSweeper(gCtx); err != nil && err != context.Canceled {
			return fmt.Errorf("reservation sweeper: %w", err)
		}
		return nil
	})

	// Surface seat-state changes from all processes for diagnostics. The
	// subscription is advisory; losing it never stops the server.
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, showingID int64) {
			a.logger.Debug("showing changed", "showing_id", showingID)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("showing change subscription ended", "error", err)
		}
		return nil
	})

	// Drain ticket confirmations
	g.Go(func() error {
		if err := a.consumer.Run(gCtx); err != nil && err != context.Canceled {
			return fmt.Errorf("notification consumer: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
