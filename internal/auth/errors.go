package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrUnknownHashScheme  = errors.New("unknown password hash scheme")
)
