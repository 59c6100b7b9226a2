package services_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/services"
	"github.com/luckymart/LuckyMart/utils"
)

func newTrigger(t *testing.T, db *gorm.DB) *services.RewardTrigger {
	t.Helper()
	cfg := testConfig()
	notifier := services.NewNotifier("")
	notifier.Start()
	t.Cleanup(notifier.Stop)
	cache := services.NewRewardConfigCache(cfg.Rewards.ConfigCacheTTL)
	return services.NewRewardTrigger(db, cfg, cache, notifier)
}

func TestTrigger_FirstLotteryEndToEnd(t *testing.T) {
	db := setupTestDB(t)
	seedConfigs(t, db)
	trigger := newTrigger(t, db)
	graph := services.NewReferralGraph(db)

	referrer := createUser(t, db, "100")
	referee := createUser(t, db, "200")
	require.NoError(t, graph.AddEdge(referrer.ID, referee.ID))

	result, err := trigger.Trigger(services.TriggerRewardRequest{
		UserID:    referee.ID,
		EventType: models.EventFirstLottery,
	})
	require.NoError(t, err)

	require.Len(t, result.UserRewards, 1)
	assert.Equal(t, "3.00000000", result.UserRewards[0].Amount.String())
	assert.Equal(t, models.RewardTypeFirstLotteryReferee, result.UserRewards[0].RewardType)

	require.Len(t, result.ReferrerRewards, 1)
	assert.Equal(t, referrer.ID, result.ReferrerRewards[0].ReferrerUserID)
	assert.Equal(t, "5.00000000", result.ReferrerRewards[0].Amount.String())
	assert.Equal(t, 1, result.ReferrerRewards[0].ReferralLevel)

	var refreshedReferee, refreshedReferrer models.User
	require.NoError(t, db.First(&refreshedReferee, "id = ?", referee.ID).Error)
	require.NoError(t, db.First(&refreshedReferrer, "id = ?", referrer.ID).Error)
	assert.True(t, refreshedReferee.HasFirstLottery)
	assert.False(t, refreshedReferee.HasFirstPurchase)
	assert.Equal(t, "3.00000000", refreshedReferee.CoinBalance.String())
	assert.Equal(t, "5.00000000", refreshedReferrer.CoinBalance.String())

	var ledgerRows int64
	require.NoError(t, db.Model(&models.RewardTransaction{}).
		Where("source_event_type = ?", models.EventFirstLottery).
		Count(&ledgerRows).Error)
	assert.Equal(t, int64(2), ledgerRows)
}

func TestTrigger_SecondCallIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedConfigs(t, db)
	trigger := newTrigger(t, db)

	user := createUser(t, db, "100")
	_, err := trigger.Trigger(services.TriggerRewardRequest{
		UserID:    user.ID,
		EventType: models.EventFirstPurchase,
	})
	require.NoError(t, err)

	_, err = trigger.Trigger(services.TriggerRewardRequest{
		UserID:    user.ID,
		EventType: models.EventFirstPurchase,
	})
	assert.ErrorIs(t, err, services.ErrAlreadyTriggered)

	var ledgerRows int64
	require.NoError(t, db.Model(&models.RewardTransaction{}).Count(&ledgerRows).Error)
	assert.Equal(t, int64(1), ledgerRows)
}

func TestTrigger_EventsAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	seedConfigs(t, db)
	trigger := newTrigger(t, db)

	user := createUser(t, db, "100")
	_, err := trigger.Trigger(services.TriggerRewardRequest{
		UserID:    user.ID,
		EventType: models.EventFirstLottery,
	})
	require.NoError(t, err)

	// The purchase flag is untouched by the lottery trigger.
	_, err = trigger.Trigger(services.TriggerRewardRequest{
		UserID:    user.ID,
		EventType: models.EventFirstPurchase,
	})
	require.NoError(t, err)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, "id = ?", user.ID).Error)
	assert.True(t, refreshed.HasFirstLottery)
	assert.True(t, refreshed.HasFirstPurchase)
	assert.Equal(t, "8.00000000", refreshed.CoinBalance.String())
}

func TestTrigger_InvalidEventType(t *testing.T) {
	db := setupTestDB(t)
	seedConfigs(t, db)
	trigger := newTrigger(t, db)

	user := createUser(t, db, "100")
	for _, eventType := range []string{"register", "second_lottery", ""} {
		_, err := trigger.Trigger(services.TriggerRewardRequest{
			UserID:    user.ID,
			EventType: eventType,
		})
		assert.ErrorIs(t, err, services.ErrInvalidEventType, "event type %q", eventType)
	}
}

func TestTrigger_UserNotFound(t *testing.T) {
	db := setupTestDB(t)
	seedConfigs(t, db)
	trigger := newTrigger(t, db)

	_, err := trigger.Trigger(services.TriggerRewardRequest{
		UserID:    "missing",
		EventType: models.EventFirstLottery,
	})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestTrigger_FraudBlockPaysNothing(t *testing.T) {
	db := setupTestDB(t)
	seedConfigs(t, db)
	trigger := newTrigger(t, db)

	a := createUser(t, db, "100")
	b := createUser(t, db, "200")
	createEdge(t, db, a.ID, b.ID)
	createEdge(t, db, b.ID, a.ID)

	_, err := trigger.Trigger(services.TriggerRewardRequest{
		UserID:    b.ID,
		EventType: models.EventFirstLottery,
	})
	assert.ErrorIs(t, err, services.ErrFraudBlocked)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, "id = ?", b.ID).Error)
	assert.False(t, refreshed.HasFirstLottery)
	assert.True(t, refreshed.CoinBalance.IsZero())

	var ledgerRows int64
	require.NoError(t, db.Model(&models.RewardTransaction{}).Count(&ledgerRows).Error)
	assert.Equal(t, int64(0), ledgerRows)

	// The blocked attempt still left evidence behind.
	var evidence models.FraudCheck
	require.NoError(t, db.Where("user_id = ?", b.ID).First(&evidence).Error)
	assert.True(t, evidence.IsFlagged)
	assert.Equal(t, 100, evidence.RiskScore)
}

func TestTrigger_ConcurrentCallsPayOnce(t *testing.T) {
	db := setupTestDB(t)
	seedConfigs(t, db)
	trigger := newTrigger(t, db)
	graph := services.NewReferralGraph(db)

	referrer := createUser(t, db, "100")
	referee := createUser(t, db, "200")
	require.NoError(t, graph.AddEdge(referrer.ID, referee.ID))

	const workers = 8
	results := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(slot int) {
			defer wg.Done()
			_, err := trigger.Trigger(services.TriggerRewardRequest{
				UserID:    referee.ID,
				EventType: models.EventFirstLottery,
			})
			results[slot] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, errors.Is(err, services.ErrAlreadyTriggered), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, "id = ?", referee.ID).Error)
	assert.Equal(t, "3.00000000", refreshed.CoinBalance.String())

	var ledgerRows int64
	require.NoError(t, db.Model(&models.RewardTransaction{}).Count(&ledgerRows).Error)
	assert.Equal(t, int64(2), ledgerRows)
}

func TestTrigger_DailyCapTrimsPayout(t *testing.T) {
	db := setupTestDB(t)
	seedConfigs(t, db)
	trigger := newTrigger(t, db)

	user := createUser(t, db, "100")

	// Leave only 0.5 of the 1000 daily allowance before the trigger.
	spent := models.RewardTransaction{
		Reference:       "pre-spent",
		UserID:          user.ID,
		Amount:          utils.MustDecimal("999.5"),
		RewardType:      models.RewardTypeFirstLotteryReferrer,
		SourceEventType: models.EventFirstLottery,
	}
	require.NoError(t, db.Create(&spent).Error)

	result, err := trigger.Trigger(services.TriggerRewardRequest{
		UserID:    user.ID,
		EventType: models.EventFirstLottery,
	})
	require.NoError(t, err)
	require.Len(t, result.UserRewards, 1)
	assert.Equal(t, "0.50000000", result.UserRewards[0].Amount.String())

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, "id = ?", user.ID).Error)
	assert.Equal(t, "0.50000000", refreshed.CoinBalance.String())
}
