package main

import (
	"log"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/controllers"
	"github.com/luckymart/LuckyMart/routes"
	"github.com/luckymart/LuckyMart/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Seed reward config rows that are missing
	if err := config.SeedRewardConfigs(config.DB); err != nil {
		utils.LogError("Failed to seed reward configs: %v", err)
		log.Fatal("Failed to seed reward configs:", err)
	}

	// Wire up the engine services
	controllers.InitServices(config.DB, cfg)
	defer controllers.ShutdownServices()

	// Set up router
	router := routes.SetupRouter()

	utils.LogInfo("Server starting on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
