package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SeatingPreference stores one household's ranked ordering of the other
// reservations they would like to sit near. The ranking is kept as a JSON
// array of RSVP ids so partial orderings stay cheap to read and rewrite.
type SeatingPreference struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RSVPID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"rsvp_id"`
	RankedIDs string    `gorm:"type:text;not null;default:'[]'" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SeatingPreference) TableName() string { return "seating_preferences" }

func (p *SeatingPreference) RankedList() []uuid.UUID {
	var ids []uuid.UUID
	if p.RankedIDs == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(p.RankedIDs), &ids); err != nil {
		return nil
	}
	return ids
}

func (p *SeatingPreference) SetRankedList(ids []uuid.UUID) error {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	p.RankedIDs = string(raw)
	return nil
}
