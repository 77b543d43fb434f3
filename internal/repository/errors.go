package repository

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrSerialization = errors.New("serialization failure")
	ErrNotReserved   = errors.New("some seats are not reserved")
)
