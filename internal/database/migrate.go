package database

import (
	"gorm.io/gorm"

	"github.com/Nyctonit/feature-flags-service/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.FeatureFlag{},
	)
}
