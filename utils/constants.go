package utils

// Application constants
const (
	// Application name
	AppName = "LuckyMart"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default database host
	DefaultDBHost = "localhost"

	// Default database port
	DefaultDBPort = "5432"

	// Default database name
	DefaultDBName = "luckymart"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100

	// Referral code prefix for newly registered users
	ReferralCodePrefix = "LM"
)
