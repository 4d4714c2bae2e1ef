package database

import (
	"taplist/internal/batches"
	"taplist/internal/lists"
	"taplist/internal/nfctags"
	"taplist/internal/taps"
	"taplist/internal/users"
	"taplist/internal/visitors"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&batches.TagBatch{},
		&nfctags.NfcTag{},
		&visitors.Visitor{},
		&taps.TapEvent{},
		&lists.List{},
		&lists.ListItem{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
