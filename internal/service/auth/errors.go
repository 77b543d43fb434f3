package auth

import "errors"

var (
	ErrEmailTaken         = errors.New("user with this email already signed up")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
