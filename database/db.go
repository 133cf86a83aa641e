package database

import (
	"fmt"
	"os"

	"localhunt-auth/logger"
	"localhunt-auth/models/account"
	"localhunt-auth/models/device"
	"localhunt-auth/models/log"
	"localhunt-auth/models/otp"
	"localhunt-auth/models/resettoken"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB opens the PostgreSQL connection, migrates the schema and creates
// the lookup indexes the hot paths rely on.
func InitDB() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	dbname := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to migrate schema", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

func autoMigrate() error {
	models := []interface{}{
		&account.User{},
		&account.Vendor{},
		&otp.OneTimeCode{},
		&resettoken.ResetToken{},
		&device.SendingDevice{},
		&log.Log{},
	}

	for _, model := range models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	return nil
}

// createIndexes covers the latest-row-per-phone OTP lookup and the
// account resolution paths.
func createIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_otps_phone_created_at ON otps(phone, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_otps_status ON otps(status)",
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_vendors_email ON vendors(email)",
		"CREATE INDEX IF NOT EXISTS idx_reset_tokens_expires_at ON password_reset_tokens(expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_sms_devices_status ON sms_devices(status)",
	}

	for _, stmt := range indexes {
		if err := DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}
