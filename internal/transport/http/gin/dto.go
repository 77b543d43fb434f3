package httpgin

import (
	"encoding/json"
	"time"
)

type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=5"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=7"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=7"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type SeatSelectionInput struct {
	Row    string `json:"row" binding:"required"`
	Number string `json:"seat_number" binding:"required"`
}

type ReserveSeatsRequest struct {
	Seats []SeatSelectionInput `json:"seats" binding:"required,min=1,dive"`
}

type ReserveSeatsResponse struct {
	SeatIDs []string `json:"seat_ids"`
}

type ConfirmSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
}

type ReleaseSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
}

type ReleaseSeatsResponse struct {
	Released int64 `json:"released"`
}

type CreateOrderRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required"`
}

type VerifyPaymentRequest struct {
	OrderID   string   `json:"order_id" binding:"required"`
	PaymentID string   `json:"payment_id" binding:"required"`
	Signature string   `json:"signature" binding:"required"`
	ShowingID int64    `json:"showing_id" binding:"required"`
	SeatIDs   []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
}

type CreateVenueRequest struct {
	Name       string          `json:"name" binding:"required"`
	City       string          `json:"city" binding:"required,min=3"`
	Address    string          `json:"address" binding:"required,min=10"`
	Capacity   int             `json:"capacity" binding:"required,gt=0"`
	SeatLayout json.RawMessage `json:"seat_layout"`
}

type CreateVenueResponse struct {
	VenueID int64 `json:"venue_id"`
}

type ShowingInput struct {
	VenueID    int64  `json:"venue_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Showtime   string `json:"showtime" binding:"required"`
	TotalSeats int    `json:"total_seats" binding:"required,gt=0"`
}

type CreateEventRequest struct {
	Title       string         `json:"title" binding:"required"`
	Host        string         `json:"host" binding:"required"`
	Description string         `json:"description" binding:"required,min=10"`
	Kind        string         `json:"kind" binding:"required,oneof=movie show concert other"`
	Category    string         `json:"category"`
	Language    string         `json:"language"`
	DurationMin int            `json:"duration_min"`
	AgeLimit    int            `json:"age_limit"`
	Showings    []ShowingInput `json:"showings" binding:"dive"`
}

type CreateEventResponse struct {
	EventID int64 `json:"event_id"`
}

type AddShowingRequest struct {
	EventID    int64  `json:"event_id" binding:"required"`
	VenueID    int64  `json:"venue_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Showtime   string `json:"showtime" binding:"required"`
	TotalSeats int    `json:"total_seats" binding:"required,gt=0"`
}

type AddShowingResponse struct {
	ShowingID int64 `json:"showing_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
