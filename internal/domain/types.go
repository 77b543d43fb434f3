package domain

import (
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatReserved  SeatStatus = "reserved"
	SeatBooked    SeatStatus = "booked"
)

type EventKind string

const (
	EventMovie   EventKind = "movie"
	EventShow    EventKind = "show"
	EventConcert EventKind = "concert"
	EventOther   EventKind = "other"
)

type Venue struct {
	ID         int64
	Name       string
	City       string
	Address    string
	Capacity   int
	SeatLayout []byte // jsonb template, immutable once created
}

type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Host        string    `json:"host"`
	Description string    `json:"description"`
	Kind        EventKind `json:"kind"`
	Category    string    `json:"category,omitempty"`
	Language    string    `json:"language,omitempty"`
	DurationMin int       `json:"duration_min,omitempty"`
	AgeLimit    int       `json:"age_limit,omitempty"`
}

// Showing is a scheduled instance of an event at a venue (date + showtime).
type Showing struct {
	ID         int64     `json:"id"`
	EventID    int64     `json:"event_id"`
	VenueID    int64     `json:"venue_id"`
	Date       time.Time `json:"date"`
	Showtime   time.Time `json:"showtime"`
	TotalSeats int       `json:"total_seats"`
}

// Seat is the durable record of one physical seat for one showing. A row is
// created lazily on the first reservation attempt; its absence means the seat
// is available. Version increases on every status change and is never reset.
type Seat struct {
	ID        uuid.UUID
	ShowingID int64
	Row       string
	Number    string
	Status    SeatStatus
	Version   int64
	UpdatedAt time.Time
}

// SeatSelection identifies a physical seat within a showing's layout.
type SeatSelection struct {
	Row    string
	Number string
}

type ShowingCounts struct {
	Available int64 `json:"available"`
	Reserved  int64 `json:"reserved"`
	Booked    int64 `json:"booked"`
	Total     int64 `json:"total"`
}

type BookingDetails struct {
	EventTitle   string    `json:"event_title"`
	EventLang    string    `json:"event_language,omitempty"`
	VenueName    string    `json:"venue_name"`
	VenueAddress string    `json:"venue_address"`
	VenueCity    string    `json:"venue_city"`
	Date         time.Time `json:"date"`
	Showtime     time.Time `json:"showtime"`
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
