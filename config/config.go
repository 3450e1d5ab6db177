package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all app configuration. It is loaded once at startup and passed
// to every component that needs it.
type Config struct {
	// MySQL
	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string

	// Upstream APIs
	TonAPIKey     string // bearer credential for tonapi.io
	JettonAddress string // tracked token contract, human form

	// Ingestion window and cycle
	StartDate             string // YYYY-MM-DD, inclusive lower bound for transactions
	UpdateIntervalSeconds int
	EventPageLimit        int

	// Google Sheets
	SheetsCredentialsFile string
	SpreadsheetID         string
	WorksheetName         string

	// Optional resolver cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogDir string
}

// LoadConfig loads configuration from environment variables, with optional .env file
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	return &Config{
		MySQLHost:     getEnv("MYSQL_HOST", "localhost"),
		MySQLPort:     getEnv("MYSQL_PORT", "3306"),
		MySQLUser:     getEnv("MYSQL_USER", "root"),
		MySQLPassword: getEnv("MYSQL_PASSWORD", ""),
		MySQLDatabase: getEnv("MYSQL_DATABASE", "jetton_tracker"),

		TonAPIKey:     getEnv("TONAPI_KEY", ""),
		JettonAddress: getEnv("JETTON_ADDRESS", ""),

		StartDate:             getEnv("START_DATE", ""),
		UpdateIntervalSeconds: getEnvAsInt("UPDATE_INTERVAL_SECONDS", 900),
		EventPageLimit:        getEnvAsInt("EVENT_PAGE_LIMIT", 100),

		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", "service-account.json"),
		SpreadsheetID:         getEnv("SPREADSHEET_ID", ""),
		WorksheetName:         getEnv("WORKSHEET_NAME", "wallets"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		LogDir: getEnv("LOG_DIR", "loggs"),
	}
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}
