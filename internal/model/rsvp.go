package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentNotPaid           PaymentStatus = "not_paid"
	PaymentCashCheck         PaymentStatus = "cash_check"
	PaymentVenmo             PaymentStatus = "venmo"
	PaymentGuestsChangedOwed PaymentStatus = "guests_changed_not_paid"
)

// Valid reports whether s is one of the four known payment states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentNotPaid, PaymentCashCheck, PaymentVenmo, PaymentGuestsChangedOwed:
		return true
	}
	return false
}

// Paid reports whether a payment has been recorded for this status.
// Adding a guest to a paid reservation voids the payment.
func (s PaymentStatus) Paid() bool {
	return s == PaymentCashCheck || s == PaymentVenmo
}

type RSVP struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ReservationID string        `gorm:"type:varchar(6);uniqueIndex;not null" json:"reservation_id"`
	Name          string        `gorm:"type:varchar(100);not null" json:"name"`
	Email         string        `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	NumGuests     int           `gorm:"not null;default:1" json:"num_guests"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(32);not null;default:'not_paid'" json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Guests []Guest `gorm:"foreignKey:RSVPID;constraint:OnDelete:CASCADE" json:"guests,omitempty"`
}

func (RSVP) TableName() string { return "rsvps" }
