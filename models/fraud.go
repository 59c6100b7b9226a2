package models

import (
	"time"
)

// FraudCheck is an append-only observation used as evidence for velocity and
// reuse scoring. Rows are write-once; retention is handled externally.
type FraudCheck struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;index" json:"user_id"`
	DeviceID  string    `gorm:"index" json:"device_id"`
	IPAddress string    `gorm:"index" json:"ip_address"`
	CheckType string    `gorm:"index;not null" json:"check_type"`
	IsFlagged bool      `gorm:"not null;default:false" json:"is_flagged"`
	RiskScore int       `gorm:"not null;default:0" json:"risk_score"`
	Reasons   string    `json:"reasons"`
	CheckedAt time.Time `gorm:"index" json:"checked_at"`
}

// Fraud check types.
const (
	FraudCheckRegistration = "registration"
	FraudCheckRewardEvent  = "reward_event"
)

// Fraud reason codes reported back to the orchestrator.
const (
	FraudReasonDeviceLimitExceeded = "deviceLimitExceeded"
	FraudReasonIPAnomaly           = "ipAnomaly"
	FraudReasonBatchRegistration   = "batchRegistration"
	FraudReasonCircularReferral    = "circularReferral"
	FraudReasonProxyIP             = "proxyIP"
)
