package service

import "errors"

var (
	ErrNotFound              = errors.New("reservation not found")
	ErrGuestNotFound         = errors.New("guest slot not found")
	ErrDuplicateEmail        = errors.New("email already has a reservation")
	ErrInvalidName           = errors.New("name is required")
	ErrInvalidEmail          = errors.New("email must be a valid @westpoint.edu address")
	ErrInvalidGuestCount     = errors.New("number of guests must be 1 or 2")
	ErrInvalidPaymentStatus  = errors.New("unknown payment status")
	ErrGuestLimitReached     = errors.New("reservation already has two guests")
	ErrIDGenerationExhausted = errors.New("could not generate a unique reservation id")
	ErrGuestInfoIncomplete   = errors.New("guest first and last name are required")
	ErrNothingToRank         = errors.New("no other reservations to rank")
)
