package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/luckymart/LuckyMart/utils"
)

// App holds the loaded configuration for the running process.
var App *Config

// Config holds all configuration for the application.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	Port       string
	Env        string

	AdminAPIToken    string
	TelegramBotToken string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	Fraud   FraudSettings
	Rewards RewardSettings
}

// FraudSettings are the externally-tunable weights and thresholds of the
// fraud detector. None of these are hard-coded in the scoring algorithm.
type FraudSettings struct {
	DeviceUserLimit         int
	DeviceReuseWeight       int
	IPVelocityLimit         int
	IPVelocityWindow        time.Duration
	IPVelocityWeight        int
	BatchRegistrationLimit  int
	BatchRegistrationWindow time.Duration
	BatchRegistrationWeight int
	ProxyIPWeight           int
	ReviewThreshold         int
	BlockThreshold          int
}

// RewardSettings bound what a single trigger may pay out.
type RewardSettings struct {
	SingleRewardLimit  utils.Decimal
	DailyRewardLimit   utils.Decimal
	MinRebateThreshold utils.Decimal
	DefaultPrecision   int
	ConfigCacheTTL     time.Duration
}

// LoadConfig loads configuration from environment variables. A missing .env
// file is not an error outside development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		DBHost:     getEnv("DB_HOST", utils.DefaultDBHost),
		DBPort:     getEnv("DB_PORT", utils.DefaultDBPort),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", utils.DefaultDBName),
		Port:       getEnv("PORT", utils.DefaultPort),
		Env:        getEnv("ENV", "development"),

		AdminAPIToken:    os.Getenv("ADMIN_API_TOKEN"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		Fraud: FraudSettings{
			DeviceUserLimit:         getEnvInt("FRAUD_DEVICE_USER_LIMIT", 3),
			DeviceReuseWeight:       getEnvInt("FRAUD_DEVICE_REUSE_WEIGHT", 40),
			IPVelocityLimit:         getEnvInt("FRAUD_IP_VELOCITY_LIMIT", 5),
			IPVelocityWindow:        getEnvDuration("FRAUD_IP_VELOCITY_WINDOW", time.Hour),
			IPVelocityWeight:        getEnvInt("FRAUD_IP_VELOCITY_WEIGHT", 25),
			BatchRegistrationLimit:  getEnvInt("FRAUD_BATCH_REGISTRATION_LIMIT", 50),
			BatchRegistrationWindow: getEnvDuration("FRAUD_BATCH_REGISTRATION_WINDOW", 10*time.Minute),
			BatchRegistrationWeight: getEnvInt("FRAUD_BATCH_REGISTRATION_WEIGHT", 20),
			ProxyIPWeight:           getEnvInt("FRAUD_PROXY_IP_WEIGHT", 15),
			ReviewThreshold:         getEnvInt("FRAUD_REVIEW_THRESHOLD", 40),
			BlockThreshold:          getEnvInt("FRAUD_BLOCK_THRESHOLD", 70),
		},
		Rewards: RewardSettings{
			SingleRewardLimit:  getEnvDecimal("REWARD_SINGLE_LIMIT", "500.0"),
			DailyRewardLimit:   getEnvDecimal("REWARD_DAILY_LIMIT", "1000.0"),
			MinRebateThreshold: getEnvDecimal("REWARD_MIN_REBATE_THRESHOLD", "0.0001"),
			DefaultPrecision:   getEnvInt("REWARD_DEFAULT_PRECISION", 8),
			ConfigCacheTTL:     getEnvDuration("REWARD_CONFIG_CACHE_TTL", 30*time.Second),
		},
	}

	App = config
	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDecimal(key, fallback string) utils.Decimal {
	if value := os.Getenv(key); value != "" {
		if parsed, err := utils.ParseDecimal(value); err == nil {
			return parsed
		}
	}
	return utils.MustDecimal(fallback)
}
