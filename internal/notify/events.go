// Package notify carries booking confirmations over RabbitMQ to delivery
// workers. The queue decouples ticket e-mails from the request path: a broker
// or mailer outage delays delivery, it never fails a booking.
package notify

// QueueTicketsConfirmed is the durable queue both publisher and consumer
// declare.
const QueueTicketsConfirmed = "tickets.confirmed"

// TicketsConfirmedEvent is published after seats reach booked. It is kept
// minimal on purpose: consumers resolve display details from the catalog so
// the payload never goes stale.
type TicketsConfirmedEvent struct {
	ShowingID   int64    `json:"showing_id"`
	SeatIDs     []string `json:"seat_ids"`
	ConfirmedAt string   `json:"confirmed_at"`
}
