package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	postgresrepo "github.com/ihorkly/bookix/internal/repository/postgres"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains the tickets.confirmed queue and hands each confirmation to
// the delivery seam. Today that seam logs the ticket summary; a mail
// transport plugs in behind deliver without touching queue code.
type Consumer struct {
	conn   *amqp.Connection
	store  *postgresrepo.Store
	logger *slog.Logger
}

func NewConsumer(conn *amqp.Connection, store *postgresrepo.Store, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{conn: conn, store: store, logger: logger}
}

// Run consumes until ctx is cancelled or the broker channel closes. Messages
// that cannot be decoded are rejected without requeue so a poison message
// cannot wedge the queue.
func (c *Consumer) Run(ctx context.Context) error {
	const op = "notify.Consumer.Run"

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer ch.Close()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warn("set QoS failed", "error", err)
	}

	if _, err := ch.QueueDeclare(QueueTicketsConfirmed, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msgs, err := ch.Consume(QueueTicketsConfirmed, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}

			if err := c.handle(ctx, d.Body); err != nil {
				c.logger.Error("ticket notification failed", "error", err)
				_ = d.Nack(false, false)
				continue
			}

			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev TicketsConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	details, err := c.store.Catalog().BookingDetails(ctx, ev.ShowingID)
	if err != nil {
		return fmt.Errorf("booking details: %w", err)
	}

	c.deliver(ev, details.EventTitle, details.VenueName)

	return nil
}

func (c *Consumer) deliver(ev TicketsConfirmedEvent, eventTitle, venueName string) {
	c.logger.Info("tickets confirmed",
		"event", eventTitle,
		"venue", venueName,
		"showing_id", ev.ShowingID,
		"seats", strings.Join(ev.SeatIDs, ","),
		"confirmed_at", ev.ConfirmedAt,
	)
}
