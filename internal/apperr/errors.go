package apperr

import "errors"

var (
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMissingDetails     = errors.New("missing details")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidImage       = errors.New("invalid image")
)
