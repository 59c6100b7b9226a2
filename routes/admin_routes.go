package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/luckymart/LuckyMart/controllers"
	"github.com/luckymart/LuckyMart/middleware"
)

// initAdminRoutes wires the operator surface behind the admin token check.
func initAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin")
	admin.Use(middleware.AdminTokenMiddleware())
	{
		configs := admin.Group("/reward-configs")
		{
			configs.GET("", controllers.ListRewardConfigs)
			configs.PUT("/:config_key", controllers.UpdateRewardConfig)
		}

		fraud := admin.Group("/fraud-checks")
		{
			fraud.GET("", controllers.ListFraudChecks)
			fraud.GET("/summary", controllers.GetFraudSummary)
			fraud.POST("/evaluate", controllers.EvaluateFraudCheck)
		}

		reports := admin.Group("/reports")
		{
			reports.GET("/rewards/excel", controllers.DownloadRewardReportExcel)
			reports.GET("/rewards/pdf", controllers.DownloadRewardReportPDF)
		}
	}
}
