package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/bmu-faultfinder/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Job{},
	)
}
