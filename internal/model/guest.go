package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMealPreference is the only meal served. The form still collects a
// preference field for display, but the stored value is always this one.
const DefaultMealPreference = "Buffet Dinner"

type Guest struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RSVPID         uuid.UUID `gorm:"type:uuid;not null;index" json:"rsvp_id"`
	GuestNumber    int       `gorm:"not null" json:"guest_number"`
	FirstName      string    `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName       string    `gorm:"type:varchar(50);not null" json:"last_name"`
	TitleRank      string    `gorm:"type:varchar(50)" json:"title_rank,omitempty"`
	MealPreference string    `gorm:"type:varchar(20);not null" json:"meal_preference"`
	AllergyNotes   string    `gorm:"type:text" json:"allergy_notes,omitempty"`
	FunFact        string    `gorm:"type:text" json:"fun_fact,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Guest) TableName() string { return "guests" }
