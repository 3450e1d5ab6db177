package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jetton-tracker/models"
)

// Config holds database connection pool options
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns sensible defaults for production
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// Connect opens a MySQL connection with default pooling and migrates the
// wallet and transaction tables.
func Connect(user, password, dbName, host, port string) (*gorm.DB, error) {
	return ConnectWithConfig(user, password, dbName, host, port, DefaultConfig())
}

// ConnectWithConfig opens a MySQL connection with custom pool configuration.
// The returned handle is the only database access point in the process; it is
// passed explicitly to every component that needs storage.
func ConnectWithConfig(user, password, dbName, host, port string, config *Config) (*gorm.DB, error) {
	// parseTime=True - parse MySQL datetime to Go time.Time
	// charset=utf8mb4 - full Unicode support
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=True&charset=utf8mb4&loc=Local&timeout=10s&readTimeout=30s&writeTimeout=30s",
		user, password, host, port, dbName,
	)

	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn), // Less verbose in production
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true, // Cache prepared statements for better performance
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	if config != nil {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established to %s:%s/%s", host, port, dbName)

	if err := Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return gormDB, nil
}

// Migrate creates or updates tables without dropping existing data
func Migrate(gormDB *gorm.DB) error {
	if gormDB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := gormDB.AutoMigrate(&models.Wallet{}, &models.Transaction{}); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return nil
}

// Close closes the database connection
func Close(gormDB *gorm.DB) error {
	if gormDB == nil {
		return nil
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}

	return sqlDB.Close()
}

// HealthCheck verifies database connectivity
func HealthCheck(gormDB *gorm.DB) error {
	if gormDB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}

	return sqlDB.Ping()
}
