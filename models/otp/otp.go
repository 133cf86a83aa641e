package otp

import (
	"time"
)

// Status of a one-time code row. Transitions are monotonic:
// PENDING -> SENT or FAILED on delivery outcome, PENDING/SENT -> VERIFIED
// or EXPIRED on verification. VERIFIED and EXPIRED are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSent     Status = "SENT"
	StatusFailed   Status = "FAILED"
	StatusVerified Status = "VERIFIED"
	StatusExpired  Status = "EXPIRED"
)

// OneTimeCode represents a single OTP issuance for a phone number.
// Rows are never deleted; the most recently created row per phone is the
// current one, older rows are history.
type OneTimeCode struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone      string     `gorm:"type:varchar(20);not null;index" json:"phone"`
	CodeHash   string     `gorm:"column:code_hash;type:varchar(64);not null" json:"-"`
	Status     Status     `gorm:"type:varchar(10);not null;default:'PENDING'" json:"status"`
	Attempts   int        `gorm:"default:0" json:"attempts"`
	SentVia    *string    `gorm:"type:varchar(20)" json:"sent_via,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OneTimeCode) TableName() string {
	return "otps"
}

// IsExpired checks the wall clock against the row's expiry.
func (o *OneTimeCode) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// IsTerminal reports whether the row accepts no further transitions.
func (o *OneTimeCode) IsTerminal() bool {
	return o.Status == StatusVerified || o.Status == StatusExpired
}
