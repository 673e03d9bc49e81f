package domain

import "errors"

// Domain sentinels. Services wrap these with context via fmt.Errorf("...: %w")
// and the HTTP layer maps them to status codes with errors.Is, so storage
// details never reach a response body.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)
