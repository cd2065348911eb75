package database

import (
	"fmt"

	"gorm.io/gorm"

	"vendinghive_backend/internal/models"
)

// AutoMigrate brings the schema up to date for every model.
func AutoMigrate(db *gorm.DB) error {
	// uuid_generate_v4() backs the BaseModel primary keys.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.SubscriptionUpgradeRequest{},
		&models.SubscriptionCancellationRequest{},
		&models.PaymentHistory{},
		&models.LeadCreditPackage{},
		&models.UserLeadCredit{},
		&models.GeneratedScript{},
		&models.JarvisConversation{},
		&models.BusinessCalculation{},
		&models.LocationSearch{},
		&models.SystemNotification{},
		&models.SupportTicket{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
