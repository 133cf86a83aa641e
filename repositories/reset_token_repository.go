package repositories

import (
	"errors"

	"localhunt-auth/models/resettoken"

	"gorm.io/gorm"
)

// ResetTokenRepository persists password-reset tokens.
type ResetTokenRepository struct {
	DB *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{DB: db}
}

func (r *ResetTokenRepository) Insert(row *resettoken.ResetToken) error {
	return r.DB.Create(row).Error
}

// FindByToken returns (nil, nil) when the opaque value is unknown.
func (r *ResetTokenRepository) FindByToken(token string) (*resettoken.ResetToken, error) {
	var row resettoken.ResetToken
	err := r.DB.Where("token = ?", token).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkUsed burns the token. Called only after the password write succeeded.
func (r *ResetTokenRepository) MarkUsed(id uint) error {
	return r.DB.Model(&resettoken.ResetToken{}).Where("id = ?", id).
		Update("used", true).Error
}
