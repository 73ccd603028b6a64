package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/westpoint-events/rsvpd/internal/model"
)

type gormRSVPRepository struct {
	db *gorm.DB
}

func NewGormRSVPRepository(db *gorm.DB) RSVPRepository {
	return &gormRSVPRepository{db: db}
}

func (r *gormRSVPRepository) Create(ctx context.Context, rsvp *model.RSVP) error {
	if rsvp.ID == uuid.Nil {
		rsvp.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rsvp).Error
}

func (r *gormRSVPRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error) {
	var rsvp model.RSVP
	if err := r.db.WithContext(ctx).First(&rsvp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *gormRSVPRepository) GetByEmail(ctx context.Context, email string) (*model.RSVP, error) {
	var rsvp model.RSVP
	if err := r.db.WithContext(ctx).First(&rsvp, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *gormRSVPRepository) GetByReservationID(ctx context.Context, rid string) (*model.RSVP, error) {
	var rsvp model.RSVP
	if err := r.db.WithContext(ctx).First(&rsvp, "reservation_id = ?", rid).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *gormRSVPRepository) ReservationIDExists(ctx context.Context, rid string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RSVP{}).
		Where("reservation_id = ?", rid).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRSVPRepository) UpdateDetails(ctx context.Context, id uuid.UUID, name, email string, numGuests int) (*model.RSVP, error) {
	var updated model.RSVP
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rsvp model.RSVP
		if err := tx.First(&rsvp, "id = ?", id).Error; err != nil {
			return err
		}
		if numGuests > rsvp.NumGuests && rsvp.PaymentStatus.Paid() {
			rsvp.PaymentStatus = model.PaymentGuestsChangedOwed
		}
		rsvp.Name = name
		rsvp.Email = email
		rsvp.NumGuests = numGuests
		if err := tx.Save(&rsvp).Error; err != nil {
			return err
		}
		updated = rsvp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *gormRSVPRepository) AddGuest(ctx context.Context, id uuid.UUID) (*model.RSVP, error) {
	var updated model.RSVP
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rsvp model.RSVP
		if err := tx.First(&rsvp, "id = ?", id).Error; err != nil {
			return err
		}
		if rsvp.NumGuests >= 2 {
			return ErrGuestLimit
		}
		rsvp.NumGuests = 2
		if rsvp.PaymentStatus.Paid() {
			rsvp.PaymentStatus = model.PaymentGuestsChangedOwed
		}
		if err := tx.Save(&rsvp).Error; err != nil {
			return err
		}
		updated = rsvp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *gormRSVPRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Explicit child deletes keep the cascade portable across drivers.
		if err := tx.Delete(&model.Guest{}, "rsvp_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.SeatingPreference{}, "rsvp_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.RSVP{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *gormRSVPRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.RSVP{}).
		Where("id = ?", id).
		Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRSVPRepository) ListAll(ctx context.Context) ([]model.RSVP, error) {
	var rsvps []model.RSVP
	err := r.db.WithContext(ctx).
		Preload("Guests", func(db *gorm.DB) *gorm.DB {
			return db.Order("guest_number")
		}).
		Order("created_at DESC").
		Find(&rsvps).Error
	if err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *gormRSVPRepository) ListGuests(ctx context.Context, rsvpID uuid.UUID) ([]model.Guest, error) {
	var guests []model.Guest
	err := r.db.WithContext(ctx).
		Where("rsvp_id = ?", rsvpID).
		Order("guest_number").
		Find(&guests).Error
	if err != nil {
		return nil, err
	}
	return guests, nil
}

func (r *gormRSVPRepository) ListAllGuests(ctx context.Context) ([]model.Guest, error) {
	var guests []model.Guest
	err := r.db.WithContext(ctx).
		Order("rsvp_id, guest_number").
		Find(&guests).Error
	if err != nil {
		return nil, err
	}
	return guests, nil
}

func (r *gormRSVPRepository) UpsertGuest(ctx context.Context, guest *model.Guest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rsvp model.RSVP
		if err := tx.First(&rsvp, "id = ?", guest.RSVPID).Error; err != nil {
			return err
		}
		if guest.GuestNumber < 1 || guest.GuestNumber > rsvp.NumGuests {
			return gorm.ErrRecordNotFound
		}

		var existing model.Guest
		err := tx.First(&existing, "rsvp_id = ? AND guest_number = ?", guest.RSVPID, guest.GuestNumber).Error
		switch {
		case err == nil:
			existing.FirstName = guest.FirstName
			existing.LastName = guest.LastName
			existing.TitleRank = guest.TitleRank
			existing.MealPreference = guest.MealPreference
			existing.AllergyNotes = guest.AllergyNotes
			existing.FunFact = guest.FunFact
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*guest = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if guest.ID == uuid.Nil {
				guest.ID = uuid.New()
			}
			return tx.Create(guest).Error
		default:
			return err
		}
	})
}

func (r *gormRSVPRepository) RemoveGuest(ctx context.Context, rsvpID uuid.UUID, guestNumber int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guest model.Guest
		if err := tx.First(&guest, "rsvp_id = ? AND guest_number = ?", rsvpID, guestNumber).Error; err != nil {
			return err
		}
		if err := tx.Delete(&guest).Error; err != nil {
			return err
		}
		if guestNumber == 1 {
			// Slot 2 inherits slot 1; UpdateColumn keeps its fields and
			// timestamps exactly as entered.
			return tx.Model(&model.Guest{}).
				Where("rsvp_id = ? AND guest_number = 2", rsvpID).
				UpdateColumn("guest_number", 1).
				Error
		}
		return nil
	})
}
