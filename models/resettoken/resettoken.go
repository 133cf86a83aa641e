package resettoken

import (
	"time"

	"localhunt-auth/models/account"
)

// ResetToken is a single-use credential authorizing one password change,
// issued after a successful OTP verification. Used tokens are kept for
// audit, never deleted.
type ResetToken struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Token       string       `gorm:"type:varchar(36);not null;uniqueIndex" json:"token"`
	AccountType account.Type `gorm:"type:varchar(10);not null" json:"account_type"`
	AccountID   *uint        `json:"account_id,omitempty"`
	Used        bool         `gorm:"default:false" json:"used"`
	ExpiresAt   time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (ResetToken) TableName() string {
	return "password_reset_tokens"
}

// IsExpired checks the wall clock against the token's expiry.
func (t *ResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
