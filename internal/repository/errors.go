package repository

import "errors"

var (
	// ErrInvalidSessionID indicates a malformed session id
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrSessionNotFound indicates the session was never opened or was already closed
	ErrSessionNotFound = errors.New("session not found")
)
