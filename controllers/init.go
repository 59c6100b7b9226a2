package controllers

import (
	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/services"
)

var (
	rewardTrigger     *services.RewardTrigger
	referralBinder    *services.ReferralBinder
	referralGraph     *services.ReferralGraph
	fraudDetector     *services.FraudDetector
	rewardConfigCache *services.RewardConfigCache
	notifier          *services.Notifier
)

// InitServices builds the shared service singletons. Call once after the
// database and config are ready, before the router starts serving.
func InitServices(db *gorm.DB, cfg *config.Config) {
	notifier = services.NewNotifier(cfg.TelegramBotToken)
	notifier.Start()

	rewardConfigCache = services.NewRewardConfigCache(cfg.Rewards.ConfigCacheTTL)
	rewardTrigger = services.NewRewardTrigger(db, cfg, rewardConfigCache, notifier)
	referralBinder = services.NewReferralBinder(db, cfg, rewardConfigCache, notifier)
	referralGraph = services.NewReferralGraph(db)
	fraudDetector = services.NewFraudDetector(db, cfg.Fraud)
}

// ShutdownServices drains the notification queue during graceful shutdown.
func ShutdownServices() {
	if notifier != nil {
		notifier.Stop()
	}
}
