package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// BindReferralRequest asks to attach a referee to the owner of a referral
// code. Device and IP feed the registration-time fraud signals.
type BindReferralRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	ReferralCode string `json:"referral_code" binding:"required"`
	DeviceID     string `json:"device_id"`
	IPAddress    string `json:"ip_address"`
}

// BindReferralResult reports the new edge and any register-time payouts.
type BindReferralResult struct {
	ReferrerUserID  string           `json:"referrer_user_id"`
	RefereeUserID   string           `json:"referee_user_id"`
	UserRewards     []UserReward     `json:"user_rewards"`
	ReferrerRewards []ReferrerReward `json:"referrer_rewards"`
}

// ReferralBinder handles the registration-time bind: fraud gate, edge
// insertion, and the optional register_* bonuses, all in one transaction.
type ReferralBinder struct {
	db          *gorm.DB
	detector    *FraudDetector
	configCache *RewardConfigCache
	notifier    *Notifier
	settings    config.RewardSettings
}

// NewReferralBinder wires the bind flow.
func NewReferralBinder(db *gorm.DB, cfg *config.Config, cache *RewardConfigCache, notifier *Notifier) *ReferralBinder {
	return &ReferralBinder{
		db:          db,
		detector:    NewFraudDetector(db, cfg.Fraud),
		configCache: cache,
		notifier:    notifier,
		settings:    cfg.Rewards,
	}
}

// Bind attaches the referee to the code owner and pays the register bonuses.
// The edge insertion and the payouts commit or roll back together.
func (b *ReferralBinder) Bind(req BindReferralRequest) (*BindReferralResult, error) {
	var referee models.User
	if err := b.db.Where("id = ?", req.UserID).First(&referee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var referrer models.User
	if err := b.db.Where("referral_code = ?", req.ReferralCode).First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferrerNotFound
		}
		return nil, err
	}
	if referrer.ID == referee.ID {
		return nil, ErrSelfReferral
	}

	input := FraudInput{
		UserID:    referee.ID,
		DeviceID:  req.DeviceID,
		IPAddress: req.IPAddress,
		CheckType: models.FraudCheckRegistration,
	}
	if input.DeviceID == "" {
		input.DeviceID = referee.DeviceFingerprint
	}
	if input.IPAddress == "" {
		input.IPAddress = referee.RegistrationIP
	}

	decision, err := b.detector.Evaluate(input)
	if err != nil {
		return nil, err
	}
	if recErr := b.detector.Record(b.db, input, decision); recErr != nil {
		utils.LogError("Failed to record fraud evidence for bind of user %s: %v", referee.ID, recErr)
	}
	if !decision.Allowed {
		return nil, ErrFraudBlocked
	}

	snapshot, err := b.configCache.Load(b.db)
	if err != nil {
		return nil, err
	}
	calculator := NewRewardCalculator(snapshot, b.settings)

	var committed []RewardLine
	err = b.db.Transaction(func(tx *gorm.DB) error {
		graph := NewReferralGraph(tx)
		if err := graph.AddEdge(referrer.ID, referee.ID); err != nil {
			return err
		}

		updates := map[string]interface{}{"referred_by_user_id": referrer.ID}
		if referee.DeviceFingerprint == "" && req.DeviceID != "" {
			updates["device_fingerprint"] = req.DeviceID
		}
		if referee.RegistrationIP == "" && req.IPAddress != "" {
			updates["registration_ip"] = req.IPAddress
		}
		if err := tx.Model(&models.User{}).Where("id = ?", referee.ID).Updates(updates).Error; err != nil {
			return err
		}

		// The ancestor chain seen from the referee after the new edge.
		ancestors := []Ancestor{{UserID: referrer.ID, Level: 1}}
		upper, cycled, err := graph.AncestorsOf(referrer.ID, models.MaxRewardDepth-1)
		if err != nil {
			return err
		}
		if cycled {
			utils.LogError("Cycle above referrer %s during bind of %s; rewarding partial chain", referrer.ID, referee.ID)
		}
		for _, ancestor := range upper {
			ancestors = append(ancestors, Ancestor{UserID: ancestor.UserID, Level: ancestor.Level + 1})
		}

		lines, err := calculator.EventRewards(models.EventRegister, referee.ID, ancestors)
		if err != nil {
			return err
		}

		for _, line := range lines {
			paid, err := calculator.ApplyDailyCap(tx, line.UserID, line.Amount)
			if err != nil {
				return err
			}
			if paid.IsZero() {
				continue
			}
			line.Amount = paid

			entry := models.RewardTransaction{
				Reference:       uuid.New().String(),
				UserID:          line.UserID,
				Amount:          line.Amount,
				RewardType:      line.RewardType,
				TriggerUserID:   &referee.ID,
				SourceEventType: models.EventRegister,
			}
			if line.ReferralLevel > 0 {
				level := line.ReferralLevel
				entry.ReferralLevel = &level
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).
				Where("id = ?", line.UserID).
				Update("coin_balance", gorm.Expr("coin_balance + ?", line.Amount)).Error; err != nil {
				return err
			}
			committed = append(committed, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.notifier.NotifyRewards(b.db, committed)

	result := &BindReferralResult{
		ReferrerUserID:  referrer.ID,
		RefereeUserID:   referee.ID,
		UserRewards:     []UserReward{},
		ReferrerRewards: []ReferrerReward{},
	}
	for _, line := range committed {
		if line.ReferralLevel == 0 {
			result.UserRewards = append(result.UserRewards, UserReward{Amount: line.Amount, RewardType: line.RewardType})
		} else {
			result.ReferrerRewards = append(result.ReferrerRewards, ReferrerReward{
				ReferrerUserID: line.UserID,
				Amount:         line.Amount,
				ReferralLevel:  line.ReferralLevel,
			})
		}
	}
	return result, nil
}
