package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/luckymart/LuckyMart/services"
	"github.com/luckymart/LuckyMart/utils"
)

// BindReferral attaches the caller to the owner of a referral code and pays
// the registration bonuses, if any are configured.
func BindReferral(c *gin.Context) {
	utils.LogInfo("BindReferral called")

	var req services.BindReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid bind request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	result, err := referralBinder.Bind(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.LogInfo("User %s bound to referrer %s", result.RefereeUserID, result.ReferrerUserID)
	utils.Success(c, "Referral bound successfully", result)
}
