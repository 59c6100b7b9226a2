package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/luckymart/LuckyMart/services"
	"github.com/luckymart/LuckyMart/utils"
)

// TriggerReferralReward fires the reward pipeline for a first-time event.
// A repeat trigger answers 409 so callers can retry safely.
func TriggerReferralReward(c *gin.Context) {
	utils.LogInfo("TriggerReferralReward called")

	var req services.TriggerRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid trigger request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	result, err := rewardTrigger.Trigger(req)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyTriggered) {
			utils.Conflict(c, "Reward already triggered", gin.H{"already_triggered": true})
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.LogInfo("Reward triggered for user %s event %s", req.UserID, req.EventType)
	utils.Success(c, "Reward triggered successfully", result)
}
