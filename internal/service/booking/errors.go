package booking

import "errors"

var (
	// ErrInvalidSelection rejects a malformed request before any transaction
	// is opened.
	ErrInvalidSelection = errors.New("invalid seat selection")

	// ErrSeatTaken reports that at least one requested seat is reserved or
	// booked. Deliberately silent about which seat, so layout races cannot be
	// used to enumerate other buyers' picks.
	ErrSeatTaken = errors.New("seat already booked")

	// ErrSeatsNotReserved rejects a confirmation for seats that are not
	// currently reserved.
	ErrSeatsNotReserved = errors.New("seats are not reserved")

	ErrShowingNotFound = errors.New("showing not found")
	ErrRateLimited     = errors.New("rate limited")
)
