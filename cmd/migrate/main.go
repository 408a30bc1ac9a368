package main

import (
	"log"
	"os"

	"rentora-be/internal/model"
	"rentora-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: extensions GORM AutoMigrate doesn't handle
	log.Println("Step 1: Setting up Extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error executing setup SQL (%s): %v", sql, err)
		}
	}

	// 4. AutoMigrate models
	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(
		&model.User{},
		&model.SubscriptionPlan{},
		&model.Subscription{},
		&model.SubscriptionEvent{},
		&model.UsageLogEntry{},
		&model.Property{},
		&model.Visit{},
	); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Composite indexes for the hot sweeps
	log.Println("Step 3: Creating composite indexes...")
	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_status_end_date ON subscriptions (status, end_date);`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_user_status ON subscriptions (user_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_logs_user_feature_created ON usage_logs (user_id, feature, created_at);`,
	}
	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error creating index (%s): %v", sql, err)
		}
	}

	log.Println("✅ Migration completed successfully")
}
