package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// GetWalletBalance returns the coin balance for a user.
func GetWalletBalance(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		utils.BadRequest(c, "Invalid request", "user_id is required")
		return
	}

	var user models.User
	if err := config.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
			return
		}
		utils.LogError("Failed to load wallet for %s: %v", userID, err)
		utils.InternalServerError(c, "Failed to fetch wallet", err.Error())
		return
	}

	utils.Success(c, "Wallet fetched", gin.H{
		"user_id":      user.ID,
		"coin_balance": user.CoinBalance,
	})
}

// GetWalletTransactions lists a user's reward ledger entries, newest first.
func GetWalletTransactions(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		utils.BadRequest(c, "Invalid request", "user_id is required")
		return
	}

	page, limit := utils.GetPaginationParams(c)

	var total int64
	if err := config.DB.Model(&models.RewardTransaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		utils.LogError("Failed to count transactions for %s: %v", userID, err)
		utils.InternalServerError(c, "Failed to fetch transactions", err.Error())
		return
	}

	var transactions []models.RewardTransaction
	if err := config.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch transactions for %s: %v", userID, err)
		utils.InternalServerError(c, "Failed to fetch transactions", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Transactions fetched", transactions, total, page, limit)
}
