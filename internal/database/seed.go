package database

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/models"
)

// SeedReferenceData inserts the plan catalog and the lead credit
// packages. Existing rows are left untouched, so the seed is safe to
// run on every startup.
func SeedReferenceData(db *gorm.DB) error {
	if err := seedPlans(db); err != nil {
		return err
	}
	return seedCreditPackages(db)
}

func seedPlans(db *gorm.DB) error {
	plans := []models.SubscriptionPlan{
		{
			Name:                 models.PlanFree,
			Price:                decimal.Zero,
			LeadsPerMonth:        3,
			LeadsPerSearchRange:  "10",
			ScriptTemplatesCount: 1,
			RegenerationAllowed:  false,
			Description:          "Perfect for getting started with vending machine placement.",
			IsActive:             true,
		},
		{
			Name:                 models.PlanStarter,
			Price:                decimal.NewFromFloat(29.99),
			LeadsPerMonth:        10,
			LeadsPerSearchRange:  "10-15",
			ScriptTemplatesCount: 5,
			RegenerationAllowed:  true,
			Description:          "Great for small vending operations with basic needs.",
			IsActive:             true,
		},
		{
			Name:                 models.PlanPro,
			Price:                decimal.NewFromFloat(59.99),
			LeadsPerMonth:        25,
			LeadsPerSearchRange:  "15-20",
			ScriptTemplatesCount: 10,
			RegenerationAllowed:  true,
			Description:          "Perfect for growing businesses with multiple locations.",
			IsActive:             true,
		},
		{
			Name:                 models.PlanElite,
			Price:                decimal.NewFromFloat(99.99),
			LeadsPerMonth:        50,
			LeadsPerSearchRange:  "20-25",
			ScriptTemplatesCount: 20,
			RegenerationAllowed:  true,
			Description:          "Advanced features for serious vending entrepreneurs.",
			IsActive:             true,
		},
		{
			Name:                 models.PlanProfessional,
			Price:                decimal.NewFromFloat(199.99),
			LeadsPerMonth:        100,
			LeadsPerSearchRange:  "25-30",
			ScriptTemplatesCount: 999, // effectively unlimited
			RegenerationAllowed:  true,
			Description:          "Full-featured plan for vending consultants and large operations.",
			IsActive:             true,
		},
	}

	for i := range plans {
		var existing models.SubscriptionPlan
		err := db.Where("name = ?", plans[i].Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check plan %s: %w", plans[i].Name, err)
		}
		if err := db.Create(&plans[i]).Error; err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", plans[i].Name, err)
		}
		logger.Info("Seeded subscription plan", "plan", plans[i].Name)
	}
	return nil
}

func seedCreditPackages(db *gorm.DB) error {
	packages := []models.LeadCreditPackage{
		{
			Name:        "Boost Pack",
			Description: "10 extra location leads for a busy week.",
			Price:       decimal.NewFromFloat(14.99),
			LeadCount:   10,
			IsActive:    true,
		},
		{
			Name:        "Growth Pack",
			Description: "25 extra location leads at a better per-lead rate.",
			Price:       decimal.NewFromFloat(29.99),
			LeadCount:   25,
			IsActive:    true,
		},
		{
			Name:        "Scale Pack",
			Description: "50 extra location leads for expansion pushes.",
			Price:       decimal.NewFromFloat(49.99),
			LeadCount:   50,
			IsActive:    true,
		},
	}

	for i := range packages {
		var existing models.LeadCreditPackage
		err := db.Where("name = ?", packages[i].Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check credit package %s: %w", packages[i].Name, err)
		}
		if err := db.Create(&packages[i]).Error; err != nil {
			return fmt.Errorf("failed to seed credit package %s: %w", packages[i].Name, err)
		}
		logger.Info("Seeded lead credit package", "package", packages[i].Name)
	}
	return nil
}
