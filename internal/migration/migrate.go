package migration

import (
	"gorm.io/gorm"

	"github.com/fitpulse/fitpulse-backend/internal/domain"
	pkglogger "github.com/fitpulse/fitpulse-backend/pkg/logger"
)

// Run applies the schema via AutoMigrate. Tables and indexes (including the
// pair-key unique index on conversations and the reaction triple index) are
// created or altered in place; nothing is dropped.
func Run(db *gorm.DB) error {
	models := []interface{}{
		&domain.Member{},
		&domain.Connection{},
		&domain.Block{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.Reaction{},
		&domain.Notification{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	pkglogger.GetLogger().Info().Int("models", len(models)).Msg("schema migration complete")
	return nil
}
