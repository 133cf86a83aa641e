package repositories

import (
	"errors"
	"time"

	"localhunt-auth/models/otp"

	"gorm.io/gorm"
)

// OTPRepository persists one-time code rows. Rows are append-only; the
// status mutators below are the only writes after insert.
type OTPRepository struct {
	DB *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{DB: db}
}

func (r *OTPRepository) Insert(row *otp.OneTimeCode) error {
	return r.DB.Create(row).Error
}

// LatestByPhone returns the most recently created row for the phone, or
// (nil, nil) when the phone has no rows at all.
func (r *OTPRepository) LatestByPhone(phone string) (*otp.OneTimeCode, error) {
	var row otp.OneTimeCode
	err := r.DB.Where("phone = ?", phone).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LatestVerifiedByPhone returns the most recent VERIFIED row for the
// phone, used to gate signup.
func (r *OTPRepository) LatestVerifiedByPhone(phone string) (*otp.OneTimeCode, error) {
	var row otp.OneTimeCode
	err := r.DB.Where("phone = ? AND status = ?", phone, otp.StatusVerified).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *OTPRepository) MarkSent(id uint, sentVia string) error {
	return r.DB.Model(&otp.OneTimeCode{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   otp.StatusSent,
			"sent_via": sentVia,
		}).Error
}

func (r *OTPRepository) MarkFailed(id uint) error {
	return r.DB.Model(&otp.OneTimeCode{}).Where("id = ?", id).
		Update("status", otp.StatusFailed).Error
}

func (r *OTPRepository) MarkVerified(id uint, at time.Time) error {
	return r.DB.Model(&otp.OneTimeCode{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      otp.StatusVerified,
			"verified_at": at,
		}).Error
}

func (r *OTPRepository) MarkExpired(id uint) error {
	return r.DB.Model(&otp.OneTimeCode{}).Where("id = ?", id).
		Update("status", otp.StatusExpired).Error
}

func (r *OTPRepository) IncrementAttempts(id uint) error {
	return r.DB.Model(&otp.OneTimeCode{}).Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}
