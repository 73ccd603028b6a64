package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/westpoint-events/rsvpd/internal/model"
)

// ErrGuestLimit is returned by AddGuest when the reservation already holds
// the maximum of two guests.
var ErrGuestLimit = errors.New("reservation already has two guests")

type RSVPRepository interface {
	Create(ctx context.Context, rsvp *model.RSVP) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error)
	GetByEmail(ctx context.Context, email string) (*model.RSVP, error)
	GetByReservationID(ctx context.Context, rid string) (*model.RSVP, error)
	ReservationIDExists(ctx context.Context, rid string) (bool, error)

	// UpdateDetails rewrites name/email/numGuests in one transaction. A guest
	// count increase on a paid reservation voids the payment in the same write.
	UpdateDetails(ctx context.Context, id uuid.UUID, name, email string, numGuests int) (*model.RSVP, error)

	// AddGuest grows the reservation to two guests, voiding a recorded
	// payment, atomically. Returns ErrGuestLimit when already at two.
	AddGuest(ctx context.Context, id uuid.UUID) (*model.RSVP, error)

	Delete(ctx context.Context, id uuid.UUID) error
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
	ListAll(ctx context.Context) ([]model.RSVP, error)

	ListGuests(ctx context.Context, rsvpID uuid.UUID) ([]model.Guest, error)
	ListAllGuests(ctx context.Context) ([]model.Guest, error)
	UpsertGuest(ctx context.Context, guest *model.Guest) error
	RemoveGuest(ctx context.Context, rsvpID uuid.UUID, guestNumber int) error
}
