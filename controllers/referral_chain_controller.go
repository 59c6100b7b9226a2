package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// GetReferralChain returns the referrer chain above a user, capped at the
// reward depth unless a deeper probe is requested.
func GetReferralChain(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		utils.BadRequest(c, "Invalid request", "user_id is required")
		return
	}

	depth, _ := strconv.Atoi(c.DefaultQuery("depth", strconv.Itoa(models.MaxRewardDepth)))
	chain, cycled, err := referralGraph.AncestorsOf(userID, depth)
	if err != nil {
		utils.LogError("Failed to walk referral chain for %s: %v", userID, err)
		utils.InternalServerError(c, "Failed to fetch referral chain", err.Error())
		return
	}

	utils.Success(c, "Referral chain fetched", gin.H{
		"user_id":        userID,
		"chain":          chain,
		"cycle_detected": cycled,
	})
}

// DetectReferralCycle probes the chain above a user for loops. Exists mainly
// for operators chasing corrupt edges.
func DetectReferralCycle(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		utils.BadRequest(c, "Invalid request", "user_id is required")
		return
	}

	cycled, err := referralGraph.HasCycleFrom(userID)
	if err != nil {
		utils.LogError("Cycle probe failed for %s: %v", userID, err)
		utils.InternalServerError(c, "Failed to probe referral chain", err.Error())
		return
	}

	utils.Success(c, "Cycle probe complete", gin.H{
		"user_id":        userID,
		"cycle_detected": cycled,
	})
}
