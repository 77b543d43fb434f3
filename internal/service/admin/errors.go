package admin

import "errors"

var (
	ErrVenueConflict   = errors.New("venue already exists")
	ErrEventConflict   = errors.New("event already exists")
	ErrShowingConflict = errors.New("showing already exists")
	ErrUnknownVenue    = errors.New("event or venue does not exist")
	ErrBadLayout       = errors.New("invalid seat layout template")
)
