package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/westpoint-events/rsvpd/internal/model"
)

type gormSeatingRepository struct {
	db *gorm.DB
}

func NewGormSeatingRepository(db *gorm.DB) SeatingRepository {
	return &gormSeatingRepository{db: db}
}

func (r *gormSeatingRepository) GetByRSVP(ctx context.Context, rsvpID uuid.UUID) (*model.SeatingPreference, error) {
	var pref model.SeatingPreference
	if err := r.db.WithContext(ctx).First(&pref, "rsvp_id = ?", rsvpID).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *gormSeatingRepository) Upsert(ctx context.Context, pref *model.SeatingPreference) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.SeatingPreference
		err := tx.First(&existing, "rsvp_id = ?", pref.RSVPID).Error
		switch {
		case err == nil:
			existing.RankedIDs = pref.RankedIDs
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*pref = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if pref.ID == uuid.Nil {
				pref.ID = uuid.New()
			}
			return tx.Create(pref).Error
		default:
			return err
		}
	})
}
