package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// setupTestDB opens a per-test in-memory database. The pool is pinned to a
// single connection so the memory database survives for the whole test and
// concurrent goroutines serialize the way a real server's pool would under
// contention.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.MigrateModels(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Fraud: config.FraudSettings{
			DeviceUserLimit:         3,
			DeviceReuseWeight:       40,
			IPVelocityLimit:         5,
			IPVelocityWindow:        time.Hour,
			IPVelocityWeight:        25,
			BatchRegistrationLimit:  50,
			BatchRegistrationWindow: 10 * time.Minute,
			BatchRegistrationWeight: 20,
			ProxyIPWeight:           15,
			ReviewThreshold:         40,
			BlockThreshold:          70,
		},
		Rewards: config.RewardSettings{
			SingleRewardLimit:  utils.MustDecimal("500.0"),
			DailyRewardLimit:   utils.MustDecimal("1000.0"),
			MinRebateThreshold: utils.MustDecimal("0.0001"),
			DefaultPrecision:   8,
			ConfigCacheTTL:     30 * time.Second,
		},
	}
}

func createUser(t *testing.T, db *gorm.DB, telegramID string) *models.User {
	t.Helper()
	user := &models.User{
		TelegramID:   telegramID,
		Username:     "user_" + telegramID,
		FirstName:    "Test",
		ReferralCode: "LM" + telegramID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createEdge(t *testing.T, db *gorm.DB, referrerID, refereeID string) {
	t.Helper()
	edge := &models.ReferralRelationship{
		ReferrerUserID: referrerID,
		RefereeUserID:  refereeID,
		ReferralLevel:  1,
	}
	require.NoError(t, db.Create(edge).Error)
}

func seedConfigs(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, config.SeedRewardConfigs(db))
}
