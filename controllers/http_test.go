package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/controllers"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/routes"
	"github.com/luckymart/LuckyMart/utils"
)

const testAdminToken = "test-admin-token"

func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	require.NoError(t, config.SeedRewardConfigs(db))

	cfg := &config.Config{
		AdminAPIToken: testAdminToken,
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
	config.App = cfg
	config.DB = db

	controllers.InitServices(db, cfg)
	t.Cleanup(controllers.ShutdownServices)

	return routes.SetupRouter(), db
}

func newUser(t *testing.T, db *gorm.DB, telegramID string) *models.User {
	t.Helper()
	user := &models.User{
		TelegramID:   telegramID,
		Username:     "user_" + telegramID,
		ReferralCode: "LM" + telegramID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTriggerEndpoint_StatusCodes(t *testing.T) {
	router, db := setupServer(t)

	referrer := newUser(t, db, "100")
	referee := newUser(t, db, "200")
	w := postJSON(router, "/v1/referral/bind", gin.H{
		"user_id":       referee.ID,
		"referral_code": referrer.ReferralCode,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Missing body fields.
	w = postJSON(router, "/v1/referral/trigger-reward", gin.H{"user_id": referee.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown event type.
	w = postJSON(router, "/v1/referral/trigger-reward", gin.H{
		"user_id": referee.ID, "event_type": "second_lottery",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown user.
	w = postJSON(router, "/v1/referral/trigger-reward", gin.H{
		"user_id": "missing", "event_type": "first_lottery",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// First trigger commits.
	w = postJSON(router, "/v1/referral/trigger-reward", gin.H{
		"user_id": referee.ID, "event_type": "first_lottery",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ok struct {
		Data struct {
			EventType   string `json:"event_type"`
			UserRewards []struct {
				Amount     string `json:"amount"`
				RewardType string `json:"reward_type"`
			} `json:"user_rewards"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.Equal(t, "first_lottery", ok.Data.EventType)
	require.Len(t, ok.Data.UserRewards, 1)
	assert.Equal(t, "3.00000000", ok.Data.UserRewards[0].Amount)

	// Second trigger conflicts.
	w = postJSON(router, "/v1/referral/trigger-reward", gin.H{
		"user_id": referee.ID, "event_type": "first_lottery",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"already_triggered":true`)
}

func TestBindEndpoint_StatusCodes(t *testing.T) {
	router, db := setupServer(t)

	referrer := newUser(t, db, "100")
	referee := newUser(t, db, "200")

	w := postJSON(router, "/v1/referral/bind", gin.H{
		"user_id":       referee.ID,
		"referral_code": "LM-unknown",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(router, "/v1/referral/bind", gin.H{
		"user_id":       referrer.ID,
		"referral_code": referrer.ReferralCode,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/v1/referral/bind", gin.H{
		"user_id":       referee.ID,
		"referral_code": referrer.ReferralCode,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = postJSON(router, "/v1/referral/bind", gin.H{
		"user_id":       referee.ID,
		"referral_code": referrer.ReferralCode,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWalletEndpoints(t *testing.T) {
	router, db := setupServer(t)

	referrer := newUser(t, db, "100")
	referee := newUser(t, db, "200")
	w := postJSON(router, "/v1/referral/bind", gin.H{
		"user_id":       referee.ID,
		"referral_code": referrer.ReferralCode,
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/wallet?user_id="+referee.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"coin_balance":"1.00000000"`)

	req = httptest.NewRequest(http.MethodGet, "/v1/wallet/transactions?user_id="+referee.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestReferralChainEndpoint(t *testing.T) {
	router, db := setupServer(t)

	a := newUser(t, db, "100")
	b := newUser(t, db, "200")
	c := newUser(t, db, "300")
	require.Equal(t, http.StatusOK, postJSON(router, "/v1/referral/bind", gin.H{
		"user_id": b.ID, "referral_code": a.ReferralCode,
	}).Code)
	require.Equal(t, http.StatusOK, postJSON(router, "/v1/referral/bind", gin.H{
		"user_id": c.ID, "referral_code": b.ReferralCode,
	}).Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/referral/chain/"+c.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Chain []struct {
				UserID string `json:"user_id"`
				Level  int    `json:"level"`
			} `json:"chain"`
			CycleDetected bool `json:"cycle_detected"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Chain, 2)
	assert.Equal(t, b.ID, resp.Data.Chain[0].UserID)
	assert.Equal(t, a.ID, resp.Data.Chain[1].UserID)
	assert.False(t, resp.Data.CycleDetected)

	req = httptest.NewRequest(http.MethodGet, "/v1/referral/detect-cycle?user_id="+c.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cycle_detected":false`)
}

func TestAdminEndpoints_TokenGuard(t *testing.T) {
	router, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/reward-configs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/reward-configs", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/reward-configs", nil)
	req.Header.Set("X-Admin-Token", testAdminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "first_play_referee")
}

func TestAdminRewardConfigUpdate_InvalidatesCache(t *testing.T) {
	router, db := setupServer(t)

	referrer := newUser(t, db, "100")
	referee := newUser(t, db, "200")
	require.Equal(t, http.StatusOK, postJSON(router, "/v1/referral/bind", gin.H{
		"user_id": referee.ID, "referral_code": referrer.ReferralCode,
	}).Code)

	payload, _ := json.Marshal(gin.H{"reward_amount": "7.5"})
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/reward-configs/first_play_referee", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Token", testAdminToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The very next trigger pays the updated amount, not the cached one.
	w = postJSON(router, "/v1/referral/trigger-reward", gin.H{
		"user_id": referee.ID, "event_type": "first_lottery",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"amount":"7.50000000"`)
}
