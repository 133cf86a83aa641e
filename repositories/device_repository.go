package repositories

import (
	"time"

	"localhunt-auth/models/device"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRepository persists sending-device rows backing the in-process
// device cache.
type DeviceRepository struct {
	DB *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{DB: db}
}

// ListByPhones loads the device rows for the configured sender identities.
func (r *DeviceRepository) ListByPhones(phones []string) ([]device.SendingDevice, error) {
	var rows []device.SendingDevice
	if err := r.DB.Where("phone IN ?", phones).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert ensures the configured devices have rows, keyed by phone.
// Existing counters and status are left untouched.
func (r *DeviceRepository) Upsert(rows []device.SendingDevice) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"daily_quota", "label"}),
	}).Create(&rows).Error
}

// IncrementSent bumps the device's daily counter after a successful send.
// The read-increment-write is not atomic across processes; the quota is a
// soft budget and a lost update is tolerated.
func (r *DeviceRepository) IncrementSent(phone string) error {
	return r.DB.Model(&device.SendingDevice{}).Where("phone = ?", phone).
		Updates(map[string]interface{}{
			"sent_today": gorm.Expr("sent_today + 1"),
			"last_seen":  time.Now().UTC(),
		}).Error
}

// MarkOffline takes a device out of rotation until external reactivation.
func (r *DeviceRepository) MarkOffline(phone string) error {
	return r.DB.Model(&device.SendingDevice{}).Where("phone = ?", phone).
		Update("status", device.StatusOffline).Error
}
