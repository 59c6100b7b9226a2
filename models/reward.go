package models

import (
	"time"

	"github.com/luckymart/LuckyMart/utils"
)

// RewardTransaction is an immutable ledger entry. Rows are append-only; the
// sum of a user's rows is the source of truth for balance deltas.
type RewardTransaction struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Reference       string        `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	UserID          string        `gorm:"size:36;index;not null" json:"user_id"`
	Amount          utils.Decimal `gorm:"not null" json:"amount"`
	RewardType      string        `gorm:"not null" json:"reward_type"`
	TriggerUserID   *string       `gorm:"size:36" json:"trigger_user_id"`
	SourceEventType string        `gorm:"index;not null" json:"source_event_type"`
	ReferralLevel   *int          `json:"referral_level"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
}

// Reward event types accepted by the trigger endpoint (closed enum).
const (
	EventFirstLottery  = "first_lottery"
	EventFirstPurchase = "first_purchase"
	EventRegister      = "register"
)

// Reward transaction types as they appear in the ledger.
const (
	RewardTypeFirstLotteryReferee   = "referral_first_lottery"
	RewardTypeFirstLotteryReferrer  = "referral_first_lottery_referrer"
	RewardTypeFirstPurchaseReferee  = "referral_first_purchase"
	RewardTypeFirstPurchaseReferrer = "referral_first_purchase_referrer"
	RewardTypeRegisterReferee       = "referral_register"
	RewardTypeRegisterReferrer      = "referral_register_referrer"
)
