package services

import "errors"

// Sentinel errors handlers translate into HTTP statuses. Services wrap these
// with %w so callers can distinguish ownership and lookup failures from
// internal ones; everything else inside a multi-step operation collapses to a
// generic error on purpose.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid input")
)
