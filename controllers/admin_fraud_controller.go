package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/services"
	"github.com/luckymart/LuckyMart/utils"
)

// Admin: list fraud evidence rows, optionally filtered to flagged ones or to
// a single user.
func ListFraudChecks(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c)

	query := config.DB.Model(&models.FraudCheck{})
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if c.Query("flagged") == "true" {
		query = query.Where("is_flagged = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count fraud checks: %v", err)
		utils.InternalServerError(c, "Failed to fetch fraud checks", err.Error())
		return
	}

	var checks []models.FraudCheck
	if err := query.Order("checked_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&checks).Error; err != nil {
		utils.LogError("Failed to fetch fraud checks: %v", err)
		utils.InternalServerError(c, "Failed to fetch fraud checks", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Fraud checks fetched", checks, total, page, limit)
}

// Admin: aggregate view over the evidence log.
func GetFraudSummary(c *gin.Context) {
	var summary struct {
		TotalChecks   int64   `json:"total_checks"`
		FlaggedChecks int64   `json:"flagged_checks"`
		Registrations int64   `json:"registration_checks"`
		RewardEvents  int64   `json:"reward_event_checks"`
		AvgRiskScore  float64 `json:"avg_risk_score"`
	}

	base := config.DB.Model(&models.FraudCheck{})
	if err := base.Count(&summary.TotalChecks).Error; err != nil {
		utils.LogError("Failed to summarize fraud checks: %v", err)
		utils.InternalServerError(c, "Failed to summarize fraud checks", err.Error())
		return
	}
	config.DB.Model(&models.FraudCheck{}).Where("is_flagged = ?", true).Count(&summary.FlaggedChecks)
	config.DB.Model(&models.FraudCheck{}).Where("check_type = ?", models.FraudCheckRegistration).Count(&summary.Registrations)
	config.DB.Model(&models.FraudCheck{}).Where("check_type = ?", models.FraudCheckRewardEvent).Count(&summary.RewardEvents)
	config.DB.Model(&models.FraudCheck{}).Select("COALESCE(AVG(risk_score), 0)").Scan(&summary.AvgRiskScore)

	utils.Success(c, "Fraud summary fetched", summary)
}

// Admin: dry-run the fraud detector against arbitrary inputs. Nothing is
// persisted; operators use this to understand why an event scored.
func EvaluateFraudCheck(c *gin.Context) {
	var req struct {
		UserID    string `json:"user_id" binding:"required"`
		DeviceID  string `json:"device_id"`
		IPAddress string `json:"ip_address"`
		CheckType string `json:"check_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if req.CheckType == "" {
		req.CheckType = models.FraudCheckRewardEvent
	}
	if verr := utils.ValidateOneOf("check_type", req.CheckType,
		models.FraudCheckRegistration, models.FraudCheckRewardEvent); verr != nil {
		utils.BadRequest(c, "Invalid request", verr)
		return
	}

	decision, err := fraudDetector.Evaluate(services.FraudInput{
		UserID:    req.UserID,
		DeviceID:  req.DeviceID,
		IPAddress: req.IPAddress,
		CheckType: req.CheckType,
	})
	if err != nil {
		utils.LogError("Fraud evaluation failed for %s: %v", req.UserID, err)
		utils.InternalServerError(c, "Fraud evaluation failed", err.Error())
		return
	}

	utils.Success(c, "Fraud evaluation complete", decision)
}
