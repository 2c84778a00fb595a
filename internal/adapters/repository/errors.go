package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrUnknownStream = errors.New("stream not found")
	ErrInvalidLimit  = errors.New("invalid alert limit")
)
