package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher implements booking.Notifier over a shared AMQP connection.
type Publisher struct {
	conn *amqp.Connection
}

func NewPublisher(conn *amqp.Connection) *Publisher {
	return &Publisher{conn: conn}
}

// PublishTicketsConfirmed queues a confirmation event. Messages are
// persistent so they survive a broker restart.
func (p *Publisher) PublishTicketsConfirmed(
	ctx context.Context,
	showingID int64,
	seatIDs []uuid.UUID,
) error {
	const op = "notify.PublishTicketsConfirmed"

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	defer ch.Close()

	if _, err := ch.QueueDeclare(
		QueueTicketsConfirmed,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]string, len(seatIDs))
	for i, id := range seatIDs {
		ids[i] = id.String()
	}

	body, err := json.Marshal(TicketsConfirmedEvent{
		ShowingID:   showingID,
		SeatIDs:     ids,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		QueueTicketsConfirmed, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
