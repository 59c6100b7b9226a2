package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// TriggerRewardRequest is the engine's entry contract. Transport layers hand
// over an already-validated tuple; device and IP are optional and default to
// what the user registered with.
type TriggerRewardRequest struct {
	UserID    string                 `json:"user_id" binding:"required"`
	EventType string                 `json:"event_type" binding:"required"`
	EventData map[string]interface{} `json:"event_data"`
	DeviceID  string                 `json:"device_id"`
	IPAddress string                 `json:"ip_address"`
}

// UserReward is a payout to the triggering user itself.
type UserReward struct {
	Amount     utils.Decimal `json:"amount"`
	RewardType string        `json:"reward_type"`
}

// ReferrerReward is a payout to an ancestor in the referral chain.
type ReferrerReward struct {
	ReferrerUserID string        `json:"referrer_user_id"`
	Amount         utils.Decimal `json:"amount"`
	ReferralLevel  int           `json:"referral_level"`
}

// TriggerRewardResult reports what the commit produced.
type TriggerRewardResult struct {
	EventType        string           `json:"event_type"`
	AlreadyTriggered bool             `json:"already_triggered"`
	UserRewards      []UserReward     `json:"user_rewards"`
	ReferrerRewards  []ReferrerReward `json:"referrer_rewards"`
}

// RewardTrigger is the transactional orchestrator for first-event rewards.
// One instance serves many concurrent requests; all mutable state lives in
// the database.
type RewardTrigger struct {
	db          *gorm.DB
	graph       *ReferralGraph
	detector    *FraudDetector
	configCache *RewardConfigCache
	notifier    *Notifier
	settings    config.RewardSettings
}

// NewRewardTrigger wires the orchestrator and its collaborators. The config
// cache is shared with whoever edits reward configs so invalidations are
// seen here.
func NewRewardTrigger(db *gorm.DB, cfg *config.Config, cache *RewardConfigCache, notifier *Notifier) *RewardTrigger {
	return &RewardTrigger{
		db:          db,
		graph:       NewReferralGraph(db),
		detector:    NewFraudDetector(db, cfg.Fraud),
		configCache: cache,
		notifier:    notifier,
		settings:    cfg.Rewards,
	}
}

// flagColumnFor maps the closed event enum onto the user's idempotency flag.
func flagColumnFor(eventType string) (string, error) {
	switch eventType {
	case models.EventFirstLottery:
		return "has_first_lottery", nil
	case models.EventFirstPurchase:
		return "has_first_purchase", nil
	default:
		return "", ErrInvalidEventType
	}
}

func flagSet(user *models.User, eventType string) bool {
	switch eventType {
	case models.EventFirstLottery:
		return user.HasFirstLottery
	case models.EventFirstPurchase:
		return user.HasFirstPurchase
	default:
		return false
	}
}

// Trigger runs the Load -> IdempotencyCheck -> FraudGate -> Compute ->
// Commit -> Notify pipeline. The commit's compare-and-swap on the flag
// column is what guarantees at-most-one payout per (user, event type) even
// under concurrent invocations.
func (t *RewardTrigger) Trigger(req TriggerRewardRequest) (*TriggerRewardResult, error) {
	flagColumn, err := flagColumnFor(req.EventType)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := t.db.Where("id = ?", req.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Fast-path check; the commit re-verifies atomically.
	if flagSet(&user, req.EventType) {
		return nil, ErrAlreadyTriggered
	}

	input := FraudInput{
		UserID:    user.ID,
		DeviceID:  req.DeviceID,
		IPAddress: req.IPAddress,
		CheckType: models.FraudCheckRewardEvent,
	}
	if input.DeviceID == "" {
		input.DeviceID = user.DeviceFingerprint
	}
	if input.IPAddress == "" {
		input.IPAddress = user.RegistrationIP
	}

	decision, err := t.detector.Evaluate(input)
	if err != nil {
		return nil, err
	}
	// The attempt is evidence either way.
	if recErr := t.detector.Record(t.db, input, decision); recErr != nil {
		utils.LogError("Failed to record fraud evidence for user %s: %v", user.ID, recErr)
	}
	if !decision.Allowed {
		t.alertFraudBlock(user.ID, decision)
		return nil, ErrFraudBlocked
	}

	ancestors, cycled, err := t.graph.AncestorsOf(user.ID, models.MaxRewardDepth)
	if err != nil {
		return nil, err
	}
	if cycled {
		utils.LogError("Cycle found in referral chain of user %s; rewarding partial chain only", user.ID)
	}

	snapshot, err := t.configCache.Load(t.db)
	if err != nil {
		return nil, err
	}
	calculator := NewRewardCalculator(snapshot, t.settings)
	lines, err := calculator.EventRewards(req.EventType, user.ID, ancestors)
	if err != nil {
		return nil, err
	}

	committed, err := t.commit(flagColumn, user.ID, req.EventType, calculator, lines)
	if err != nil {
		return nil, err
	}

	t.notifier.NotifyRewards(t.db, committed)

	result := &TriggerRewardResult{
		EventType:       req.EventType,
		UserRewards:     []UserReward{},
		ReferrerRewards: []ReferrerReward{},
	}
	for _, line := range committed {
		if line.ReferralLevel == 0 {
			result.UserRewards = append(result.UserRewards, UserReward{
				Amount:     line.Amount,
				RewardType: line.RewardType,
			})
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

// commit atomically flips the idempotency flag, appends the ledger rows and
// applies the balance increments. Losing the flag race rolls everything back
// and reports AlreadyTriggered. Returns the lines as actually paid (daily
// caps may shrink them).
func (t *RewardTrigger) commit(flagColumn, userID, eventType string, calculator *RewardCalculator, lines []RewardLine) ([]RewardLine, error) {
	var committed []RewardLine
	err := t.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where(fmt.Sprintf("id = ? AND %s = ?", flagColumn), userID, false).
			Update(flagColumn, true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyTriggered
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
				TriggerUserID:   &userID,
				SourceEventType: eventType,
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
	return committed, nil
}

// alertFraudBlock emails active operators. Best-effort; never blocks or
// fails the request path.
func (t *RewardTrigger) alertFraudBlock(userID string, decision *FraudDecision) {
	var admins []models.Admin
	if err := t.db.Where("is_active = ?", true).Find(&admins).Error; err != nil {
		utils.LogError("Failed to load admin recipients for fraud alert: %v", err)
		return
	}
	if len(admins) == 0 {
		return
	}
	recipients := make([]string, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, admin.Email)
	}
	go func() {
		if err := utils.SendFraudAlertEmail(recipients, userID, decision.RiskScore, decision.Reasons); err != nil {
			utils.LogError("Fraud alert email failed: %v", err)
		}
	}()
}
