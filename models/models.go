package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/utils"
)

// User represents a mini-app user. Balance and first-event flags are only
// mutated by the reward trigger inside its commit transaction.
type User struct {
	ID                string        `gorm:"primaryKey;size:36" json:"id"`
	TelegramID        string        `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username          string        `json:"username"`
	FirstName         string        `json:"first_name"`
	ReferralCode      string        `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferredByUserID  *string       `gorm:"index" json:"referred_by_user_id"`
	DeviceFingerprint string        `gorm:"index" json:"-"`
	RegistrationIP    string        `json:"-"`
	CoinBalance       utils.Decimal `gorm:"not null;default:0" json:"coin_balance"`
	HasFirstLottery   bool          `gorm:"not null;default:false" json:"has_first_lottery"`
	HasFirstPurchase  bool          `gorm:"not null;default:false" json:"has_first_purchase"`
	IsBlocked         bool          `gorm:"not null;default:false" json:"is_blocked"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// BeforeCreate assigns a stable ID so the referral graph can address nodes
// before the row is flushed.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Admin represents an operator of the admin dashboard endpoints.
type Admin struct {
	gorm.Model
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `json:"first_name"`
	LastLogin time.Time `json:"last_login"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
}
