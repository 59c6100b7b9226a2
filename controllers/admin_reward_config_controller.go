package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// Admin: list reward config lines.
func ListRewardConfigs(c *gin.Context) {
	var configs []models.RewardConfig
	if err := config.DB.Order("config_key").Find(&configs).Error; err != nil {
		utils.LogError("Failed to list reward configs: %v", err)
		utils.InternalServerError(c, "Failed to fetch reward configs", err.Error())
		return
	}
	utils.Success(c, "Reward configs fetched", gin.H{"configs": configs})
}

// Admin: update one reward config line by key. The config cache is dropped so
// the next reward run sees the change.
func UpdateRewardConfig(c *gin.Context) {
	key := c.Param("config_key")
	if key == "" {
		utils.BadRequest(c, "Invalid request", "config_key is required")
		return
	}

	var req struct {
		ConfigName      *string `json:"config_name"`
		RewardAmount    *string `json:"reward_amount"`
		OutputPrecision *int    `json:"output_precision"`
		IsActive        *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var row models.RewardConfig
	if err := config.DB.Where("config_key = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Reward config not found")
			return
		}
		utils.LogError("Failed to load reward config %s: %v", key, err)
		utils.InternalServerError(c, "Failed to fetch reward config", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.ConfigName != nil {
		updates["config_name"] = *req.ConfigName
	}
	if req.RewardAmount != nil {
		amount, err := utils.ParseDecimal(*req.RewardAmount)
		if err != nil {
			utils.BadRequest(c, "Invalid reward amount", err.Error())
			return
		}
		if amount.IsNegative() {
			utils.BadRequest(c, "Invalid reward amount", "Amount must not be negative")
			return
		}
		updates["reward_amount"] = amount
	}
	if req.OutputPrecision != nil {
		if *req.OutputPrecision < 0 || *req.OutputPrecision > utils.DecimalScale {
			utils.BadRequest(c, "Invalid precision", "Precision must be between 0 and 8")
			return
		}
		updates["output_precision"] = *req.OutputPrecision
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Invalid request", "No fields to update")
		return
	}

	if err := config.DB.Model(&row).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update reward config %s: %v", key, err)
		utils.InternalServerError(c, "Failed to update reward config", err.Error())
		return
	}
	rewardConfigCache.Invalidate()

	if err := config.DB.Where("config_key = ?", key).First(&row).Error; err != nil {
		utils.LogError("Failed to reload reward config %s: %v", key, err)
	}

	utils.LogInfo("Reward config %s updated", key)
	utils.Success(c, "Reward config updated", gin.H{"config": row})
}
