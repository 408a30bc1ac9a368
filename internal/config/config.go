package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Midtrans  MidtransConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type MidtransConfig struct {
	ServerKey  string
	ClientKey  string
	Production bool
}

// SchedulerConfig carries the cron expressions and sweep tunables for the
// lifecycle jobs.
type SchedulerConfig struct {
	Enabled bool

	ResetUsageSchedule      string
	TrialReminderSchedule   string
	ExpiryReminderSchedule  string
	RenewalSchedule         string
	OverdueSchedule         string
	StatusSyncSchedule      string
	CleanupSchedule         string
	MonthlyReportSchedule   string

	TrialLookaheadDays    int
	ExpiryLookaheadDays   int
	RenewalLookaheadHours int
	GraceDays             int
	MaxRenewalAttempts    int
	RetentionDays         int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Rentora"),
		},
		Midtrans: MidtransConfig{
			ServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
			ClientKey:  getEnv("MIDTRANS_CLIENT_KEY", ""),
			Production: getEnvAsBool("MIDTRANS_PRODUCTION", false),
		},
		Scheduler: SchedulerConfig{
			Enabled: getEnvAsBool("SCHEDULER_ENABLED", true),

			// Hourly sweeps for time-sensitive transitions, daily for
			// reminders, monthly for reports and cleanup.
			ResetUsageSchedule:     getEnv("SCHEDULE_RESET_USAGE", "0 * * * *"),
			TrialReminderSchedule:  getEnv("SCHEDULE_TRIAL_REMINDER", "0 9 * * *"),
			ExpiryReminderSchedule: getEnv("SCHEDULE_EXPIRY_REMINDER", "30 9 * * *"),
			RenewalSchedule:        getEnv("SCHEDULE_RENEWALS", "15 * * * *"),
			OverdueSchedule:        getEnv("SCHEDULE_OVERDUE", "45 */6 * * *"),
			StatusSyncSchedule:     getEnv("SCHEDULE_STATUS_SYNC", "30 * * * *"),
			CleanupSchedule:        getEnv("SCHEDULE_CLEANUP", "0 3 * * 0"),
			MonthlyReportSchedule:  getEnv("SCHEDULE_MONTHLY_REPORT", "0 6 1 * *"),

			TrialLookaheadDays:    getEnvAsInt("TRIAL_LOOKAHEAD_DAYS", 3),
			ExpiryLookaheadDays:   getEnvAsInt("EXPIRY_LOOKAHEAD_DAYS", 3),
			RenewalLookaheadHours: getEnvAsInt("RENEWAL_LOOKAHEAD_HOURS", 24),
			GraceDays:             getEnvAsInt("PAYMENT_GRACE_DAYS", 7),
			MaxRenewalAttempts:    getEnvAsInt("MAX_RENEWAL_ATTEMPTS", 3),
			RetentionDays:         getEnvAsInt("USAGE_LOG_RETENTION_DAYS", 180),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
