package device

import (
	"time"

	"github.com/jinzhu/now"
)

// Device status values. An offline device is never selected as a send
// candidate until it is reactivated externally.
const (
	StatusActive  = "active"
	StatusOffline = "offline"
)

// SendingDevice is an outbound SMS identity with a soft daily quota.
// sent_today is reset by an external job, not by this service.
type SendingDevice struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone      string     `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	Label      string     `gorm:"type:varchar(100)" json:"label"`
	DailyQuota int        `gorm:"not null" json:"daily_quota"`
	SentToday  int        `gorm:"default:0" json:"sent_today"`
	Status     string     `gorm:"type:varchar(10);not null;default:'active'" json:"status"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SendingDevice) TableName() string {
	return "sms_devices"
}

// IsActive reports whether the device may be selected for sending.
func (d *SendingDevice) IsActive() bool {
	return d.Status == StatusActive
}

// UnderQuota reports whether the device still has budget for today.
// The quota is soft: over-quota devices remain a last resort.
func (d *SendingDevice) UnderQuota() bool {
	return d.SentToday < d.DailyQuota
}

// QuotaResetsAt returns the next midnight, when the external counter
// reset is expected to run.
func (d *SendingDevice) QuotaResetsAt() time.Time {
	return now.BeginningOfDay().AddDate(0, 0, 1)
}
