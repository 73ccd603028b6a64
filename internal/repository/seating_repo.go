package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/westpoint-events/rsvpd/internal/model"
)

type SeatingRepository interface {
	GetByRSVP(ctx context.Context, rsvpID uuid.UUID) (*model.SeatingPreference, error)
	Upsert(ctx context.Context, pref *model.SeatingPreference) error
}
