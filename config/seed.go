package config

import (
	"errors"

	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

type rewardConfigSeed struct {
	key    string
	name   string
	amount string
}

// Default reward lines. Amounts are starting points; operators tune them
// through the admin endpoints.
var rewardConfigSeeds = []rewardConfigSeed{
	{models.ConfigKeyFirstPlayReferee, "First lottery bonus (referee)", "3.0"},
	{models.ConfigKeyFirstPlayReferrerL1, "First lottery bonus (level 1 referrer)", "5.0"},
	{models.ConfigKeyFirstPlayReferrerL2, "First lottery bonus (level 2 referrer)", "2.0"},
	{models.ConfigKeyFirstPlayReferrerL3, "First lottery bonus (level 3 referrer)", "1.0"},
	{models.ConfigKeyFirstBuyReferee, "First purchase bonus (referee)", "5.0"},
	{models.ConfigKeyFirstBuyReferrerL1, "First purchase bonus (level 1 referrer)", "8.0"},
	{models.ConfigKeyFirstBuyReferrerL2, "First purchase bonus (level 2 referrer)", "3.0"},
	{models.ConfigKeyFirstBuyReferrerL3, "First purchase bonus (level 3 referrer)", "1.0"},
	{models.ConfigKeyRegisterReferee, "Registration bonus (referee)", "1.0"},
	{models.ConfigKeyRegisterReferrerL1, "Registration bonus (level 1 referrer)", "2.0"},
	{models.ConfigKeyRegisterReferrerL2, "Registration bonus (level 2 referrer)", "0"},
	{models.ConfigKeyRegisterReferrerL3, "Registration bonus (level 3 referrer)", "0"},
}

// SeedRewardConfigs inserts any missing reward config rows. Existing rows are
// left untouched so operator edits survive restarts.
func SeedRewardConfigs(db *gorm.DB) error {
	for _, seed := range rewardConfigSeeds {
		var existing models.RewardConfig
		err := db.Where("config_key = ?", seed.key).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row := models.RewardConfig{
			ConfigKey:       seed.key,
			ConfigName:      seed.name,
			RewardAmount:    utils.MustDecimal(seed.amount),
			OutputPrecision: 8,
			IsActive:        true,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
