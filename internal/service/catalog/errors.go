package catalog

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrShowingNotFound = errors.New("showing not found")
)
