package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/luckymart/LuckyMart/controllers"
	"github.com/luckymart/LuckyMart/utils"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		utils.Success(c, "ok", nil)
	})

	// API version group
	api := router.Group("/v1")
	{
		referral := api.Group("/referral")
		{
			referral.POST("/trigger-reward", controllers.TriggerReferralReward)
			referral.POST("/bind", controllers.BindReferral)
			referral.GET("/chain/:user_id", controllers.GetReferralChain)
			referral.GET("/detect-cycle", controllers.DetectReferralCycle)
		}

		wallet := api.Group("/wallet")
		{
			wallet.GET("", controllers.GetWalletBalance)
			wallet.GET("/transactions", controllers.GetWalletTransactions)
		}

		initAdminRoutes(api)
	}

	return router
}
