package main

import (
	"log"
	"os"

	"rentora-be/internal/model"
	"rentora-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Plan Catalog...")

	plans := []model.SubscriptionPlan{
		{
			Name:                    "Free",
			Slug:                    "free",
			Tagline:                 "Try Rentora at no cost",
			Description:             "For individual landlords getting started.",
			Price:                   0,
			Currency:                "USD",
			BillingCycle:            "monthly",
			TrialDays:               0,
			MaxProperties:           3,
			MaxVisitsPerMonth:       5,
			MaxBoostsPerMonth:       0,
			MaxMediaPerProperty:     5,
			MaxAmenitiesPerProperty: 10,
			BoostEnabled:            false,
			IsVisible:               true,
			IsActive:                true,
			SortOrder:               0,
		},
		{
			Name:                    "Starter",
			Slug:                    "starter",
			Tagline:                 "For growing portfolios",
			Description:             "More listings, visit scheduling, and boosts.",
			Price:                   19,
			Currency:                "USD",
			BillingCycle:            "monthly",
			TrialDays:               14,
			MaxProperties:           15,
			MaxVisitsPerMonth:       50,
			MaxBoostsPerMonth:       3,
			MaxMediaPerProperty:     15,
			MaxAmenitiesPerProperty: 25,
			BoostEnabled:            true,
			IsMostPopular:           true,
			IsVisible:               true,
			IsActive:                true,
			SortOrder:               1,
		},
		{
			Name:                    "Professional",
			Slug:                    "professional",
			Tagline:                 "For agencies and power users",
			Description:             "Unlimited listings with analytics and bulk tools.",
			Price:                   49,
			Currency:                "USD",
			BillingCycle:            "monthly",
			TrialDays:               14,
			MaxProperties:           -1,
			MaxVisitsPerMonth:       -1,
			MaxBoostsPerMonth:       10,
			MaxMediaPerProperty:     -1,
			MaxAmenitiesPerProperty: -1,
			BoostEnabled:            true,
			PremiumSupport:          true,
			AdvancedAnalytics:       true,
			BulkOperations:          true,
			IsVisible:               true,
			IsActive:                true,
			SortOrder:               2,
		},
	}

	for _, plan := range plans {
		var existing model.SubscriptionPlan
		err := db.Where("slug = ?", plan.Slug).First(&existing).Error
		if err == nil {
			log.Printf("Plan '%s' already exists, skipping", plan.Slug)
			continue
		}
		if err := db.Create(&plan).Error; err != nil {
			log.Fatalf("Error seeding plan '%s': %v", plan.Slug, err)
		}
		log.Printf("Seeded plan '%s'", plan.Slug)
	}

	log.Println("✅ Seeding completed")
}
