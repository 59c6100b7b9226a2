package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/models"
)

var DB *gorm.DB

// InitDB initializes the database connection and migrates the engine schema.
func InitDB() {
	config := App
	if config == nil {
		loaded, err := LoadConfig()
		if err != nil {
			panic(fmt.Sprintf("Failed to load config: %v", err))
		}
		config = loaded
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := MigrateModels(db); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	DB = db
}

// MigrateModels runs auto-migration for every engine table. Exposed so the
// test suite can migrate its own database handle.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.ReferralRelationship{},
		&models.RewardTransaction{},
		&models.FraudCheck{},
		&models.RewardConfig{},
	)
}
