package models

import (
	"time"
)

// ReferralRelationship is a single referrer -> referee edge. A referee has
// exactly one direct referrer (unique index); level-2/3 referrers are derived
// by walking the chain, never stored.
type ReferralRelationship struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReferrerUserID string    `gorm:"size:36;index;not null" json:"referrer_user_id"`
	RefereeUserID  string    `gorm:"size:36;uniqueIndex;not null" json:"referee_user_id"`
	ReferralLevel  int       `gorm:"not null;default:1" json:"referral_level"`
	CreatedAt      time.Time `json:"created_at"`
}

// Referral depth limits shared by the graph and the reward calculator.
const (
	// MaxRewardDepth caps how far up the chain rewards are attributed.
	MaxRewardDepth = 3
	// MaxCycleProbeDepth bounds cycle detection walks so corrupt data can
	// never loop the engine.
	MaxCycleProbeDepth = 10
)
