package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds hot-path indexes for the attribution queries that
// AutoMigrate does not cover (composite and partial indexes).
func MigrateConstraints(db *gorm.DB) error {
	// Dedup lookups scan recent non-duplicate taps per tag
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tap_events_tag_occurred
		ON tap_events (tag_id, occurred_at DESC)
		WHERE is_duplicate = false;
	`).Error
	if err != nil {
		return err
	}

	// Session-hint attach resolves recent taps by correlation token
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tap_events_session_hint
		ON tap_events (session_hint)
		WHERE session_hint IS NOT NULL;
	`).Error
	if err != nil {
		return err
	}

	// Claim relinks scan a visitor's unattributed events
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tap_events_visitor_unlinked
		ON tap_events (visitor_id)
		WHERE user_id IS NULL;
	`).Error
	if err != nil {
		return err
	}

	return nil
}
