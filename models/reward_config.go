package models

import (
	"time"

	"github.com/luckymart/LuckyMart/utils"
)

// RewardConfig maps a config key to a reward amount. Rows are loaded into an
// immutable snapshot per orchestrator invocation so a single run never
// observes two different versions.
type RewardConfig struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	ConfigKey       string        `gorm:"uniqueIndex;not null" json:"config_key"`
	ConfigName      string        `json:"config_name"`
	RewardAmount    utils.Decimal `gorm:"not null" json:"reward_amount"`
	OutputPrecision int           `gorm:"not null;default:8" json:"output_precision"`
	IsActive        bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Recognized reward config keys (closed set).
const (
	ConfigKeyFirstPlayReferee    = "first_play_referee"
	ConfigKeyFirstPlayReferrerL1 = "first_play_referrer_l1"
	ConfigKeyFirstPlayReferrerL2 = "first_play_referrer_l2"
	ConfigKeyFirstPlayReferrerL3 = "first_play_referrer_l3"
	ConfigKeyFirstBuyReferee     = "first_purchase_referee"
	ConfigKeyFirstBuyReferrerL1  = "first_purchase_referrer_l1"
	ConfigKeyFirstBuyReferrerL2  = "first_purchase_referrer_l2"
	ConfigKeyFirstBuyReferrerL3  = "first_purchase_referrer_l3"
	ConfigKeyRegisterReferee     = "register_referee"
	ConfigKeyRegisterReferrerL1  = "register_referrer_l1"
	ConfigKeyRegisterReferrerL2  = "register_referrer_l2"
	ConfigKeyRegisterReferrerL3  = "register_referrer_l3"
)
