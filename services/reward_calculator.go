package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// RewardLine is one computed payout: who gets how much and why.
// ReferralLevel 0 marks the triggering user's own (referee) bonus.
type RewardLine struct {
	UserID        string        `json:"user_id"`
	Amount        utils.Decimal `json:"amount"`
	RewardType    string        `json:"reward_type"`
	ReferralLevel int           `json:"referral_level"`
}

// RewardCalculator turns an event plus an ancestor chain into reward lines.
// All arithmetic goes through the fixed-point Decimal type.
type RewardCalculator struct {
	snapshot *RewardConfigSnapshot
	settings config.RewardSettings
}

// NewRewardCalculator binds a calculator to one config snapshot. A fresh
// calculator is built per orchestrator invocation.
func NewRewardCalculator(snapshot *RewardConfigSnapshot, settings config.RewardSettings) *RewardCalculator {
	return &RewardCalculator{snapshot: snapshot, settings: settings}
}

// eventKeys maps an event type to its config keys and ledger types.
type eventKeys struct {
	refereeKey     string
	referrerKeyFmt string
	refereeType    string
	referrerType   string
}

var eventKeyTable = map[string]eventKeys{
	models.EventFirstLottery: {
		refereeKey:     models.ConfigKeyFirstPlayReferee,
		referrerKeyFmt: "first_play_referrer_l%d",
		refereeType:    models.RewardTypeFirstLotteryReferee,
		referrerType:   models.RewardTypeFirstLotteryReferrer,
	},
	models.EventFirstPurchase: {
		refereeKey:     models.ConfigKeyFirstBuyReferee,
		referrerKeyFmt: "first_purchase_referrer_l%d",
		refereeType:    models.RewardTypeFirstPurchaseReferee,
		referrerType:   models.RewardTypeFirstPurchaseReferrer,
	},
	models.EventRegister: {
		refereeKey:     models.ConfigKeyRegisterReferee,
		referrerKeyFmt: "register_referrer_l%d",
		refereeType:    models.RewardTypeRegisterReferee,
		referrerType:   models.RewardTypeRegisterReferrer,
	},
}

// EventRewards computes the flat first-event bonus lines for the triggering
// user and every rewarded ancestor. A missing or inactive config line simply
// produces no reward; "no reward configured" is a valid state, not an error.
func (rc *RewardCalculator) EventRewards(eventType, userID string, ancestors []Ancestor) ([]RewardLine, error) {
	keys, ok := eventKeyTable[eventType]
	if !ok {
		return nil, ErrInvalidEventType
	}

	var lines []RewardLine
	if entry, found := rc.snapshot.Get(keys.refereeKey); found && entry.Active && !entry.Amount.IsZero() {
		lines = append(lines, RewardLine{
			UserID:        userID,
			Amount:        rc.capSingle(entry.Amount),
			RewardType:    keys.refereeType,
			ReferralLevel: 0,
		})
	}

	for _, ancestor := range ancestors {
		if ancestor.Level > models.MaxRewardDepth {
			break
		}
		key := fmt.Sprintf(keys.referrerKeyFmt, ancestor.Level)
		entry, found := rc.snapshot.Get(key)
		if !found || !entry.Active || entry.Amount.IsZero() {
			continue
		}
		lines = append(lines, RewardLine{
			UserID:        ancestor.UserID,
			Amount:        rc.capSingle(entry.Amount),
			RewardType:    keys.referrerType,
			ReferralLevel: ancestor.Level,
		})
	}
	return lines, nil
}

// RebateResult carries the exact and rounded outcome of a percentage flow.
type RebateResult struct {
	Rebate        utils.Decimal `json:"rebate"`
	EffectiveRate utils.Decimal `json:"effective_rate"`
	Rounded       utils.Decimal `json:"rounded_rebate"`
}

// CalculateRebate computes rate * amount with an optional tier multiplier.
// Rebates below the configured minimum threshold collapse to zero, and
// negative inputs resolve to a zero reward rather than an error ("never pay
// negative"). Precision is per reward line; wallet-facing flows round to one
// digit, the internal ledger keeps eight.
func (rc *RewardCalculator) CalculateRebate(amount, rate, tierMultiplier utils.Decimal, precision int) (*RebateResult, error) {
	one := utils.MustDecimal("1")
	if rate.Cmp(one) > 0 {
		return nil, ErrInvalidRate
	}
	if precision <= 0 {
		precision = rc.settings.DefaultPrecision
	}

	zero := &RebateResult{}
	if amount.IsNegative() || rate.IsNegative() || amount.IsZero() {
		return zero, nil
	}
	if tierMultiplier.IsZero() {
		tierMultiplier = one
	}

	raw := amount.Mul(rate)
	tiered := raw.Mul(tierMultiplier)
	if tiered.Cmp(rc.settings.MinRebateThreshold) < 0 {
		return zero, nil
	}

	effectiveRate, err := tiered.Div(amount)
	if err != nil {
		return nil, err
	}

	return &RebateResult{
		Rebate:        tiered,
		EffectiveRate: effectiveRate,
		Rounded:       tiered.Round(precision),
	}, nil
}

// ApplyDailyCap trims amount to the payee's remaining daily allowance. The
// payee receives less than the nominal formula rather than being rejected.
func (rc *RewardCalculator) ApplyDailyCap(tx *gorm.DB, userID string, amount utils.Decimal) (utils.Decimal, error) {
	if amount.IsNegative() || amount.IsZero() {
		return 0, nil
	}

	dayStart := time.Now().Truncate(24 * time.Hour)
	var paidUnits int64
	err := tx.Model(&models.RewardTransaction{}).
		Where("user_id = ? AND created_at >= ?", userID, dayStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paidUnits).Error
	if err != nil {
		return 0, err
	}

	remaining := rc.settings.DailyRewardLimit.Sub(utils.DecimalFromUnits(paidUnits))
	if remaining.IsNegative() || remaining.IsZero() {
		return 0, nil
	}
	if amount.Cmp(remaining) > 0 {
		return remaining, nil
	}
	return amount, nil
}

// capSingle applies the per-transaction limit.
func (rc *RewardCalculator) capSingle(amount utils.Decimal) utils.Decimal {
	if amount.Cmp(rc.settings.SingleRewardLimit) > 0 {
		return rc.settings.SingleRewardLimit
	}
	return amount
}
