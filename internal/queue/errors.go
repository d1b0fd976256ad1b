package queue

import (
	"errors"
)

var (
	// ErrValidation is returned when an operation receives bad input.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState is returned when an operation is attempted against
	// an item whose current status does not allow it.
	ErrInvalidState = errors.New("invalid state for operation")
)
