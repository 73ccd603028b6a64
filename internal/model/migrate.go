package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&RSVP{},
		&Guest{},
		&SeatingPreference{},
	); err != nil {
		return err
	}

	// One row per (reservation, slot); slot is 1 or 2.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_guests_rsvp_slot " +
			"ON guests (rsvp_id, guest_number)",
	).Error
}
