package repositories

import (
	"errors"

	"localhunt-auth/models/account"

	"gorm.io/gorm"
)

// AccountRepository reads and writes user and vendor rows. Lookup methods
// return (nil, nil) when no row matches so callers can distinguish
// not-found from a store failure.
type AccountRepository struct {
	DB *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

// FindByPhone resolves the account owning a phone number, checking the
// users table first, then vendors.
func (r *AccountRepository) FindByPhone(phone string) (*account.Record, error) {
	var u account.User
	err := r.DB.Where("phone = ?", phone).First(&u).Error
	if err == nil {
		return userRecord(&u), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var v account.Vendor
	err = r.DB.Where("phone = ?", phone).First(&v).Error
	if err == nil {
		return vendorRecord(&v), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

// FindByEmail resolves the account owning an email address, users first.
func (r *AccountRepository) FindByEmail(email string) (*account.Record, error) {
	var u account.User
	err := r.DB.Where("email = ?", email).First(&u).Error
	if err == nil {
		return userRecord(&u), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var v account.Vendor
	err = r.DB.Where("email = ?", email).First(&v).Error
	if err == nil {
		return vendorRecord(&v), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

func (r *AccountRepository) CreateUser(u *account.User) error {
	return r.DB.Create(u).Error
}

func (r *AccountRepository) CreateVendor(v *account.Vendor) error {
	return r.DB.Create(v).Error
}

// UpdatePasswordHashByPhone writes a new credential hash for the account
// of the given kind.
func (r *AccountRepository) UpdatePasswordHashByPhone(t account.Type, phone, hash string) error {
	if t == account.TypeVendor {
		return r.DB.Model(&account.Vendor{}).Where("phone = ?", phone).
			Update("password_hash", hash).Error
	}
	return r.DB.Model(&account.User{}).Where("phone = ?", phone).
		Update("password_hash", hash).Error
}

func (r *AccountRepository) VendorByID(id uint) (*account.Vendor, error) {
	var v account.Vendor
	err := r.DB.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVendorProfile rewrites the vendor's display fields.
func (r *AccountRepository) UpdateVendorProfile(id uint, fullName, email string) error {
	updates := map[string]interface{}{
		"full_name": fullName,
		"email":     email,
	}
	return r.DB.Model(&account.Vendor{}).Where("id = ?", id).Updates(updates).Error
}

func (r *AccountRepository) UpdateVendorPhone(id uint, phone string) error {
	return r.DB.Model(&account.Vendor{}).Where("id = ?", id).
		Update("phone", phone).Error
}

func (r *AccountRepository) UpdateVendorPassword(id uint, hash string) error {
	return r.DB.Model(&account.Vendor{}).Where("id = ?", id).
		Update("password_hash", hash).Error
}

func userRecord(u *account.User) *account.Record {
	rec := &account.Record{
		Type:         account.TypeUser,
		ID:           u.ID,
		FullName:     u.FullName,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		AvatarURL:    u.AvatarURL,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Email != nil {
		rec.Email = *u.Email
	}
	return rec
}

func vendorRecord(v *account.Vendor) *account.Record {
	rec := &account.Record{
		Type:         account.TypeVendor,
		ID:           v.ID,
		FullName:     v.FullName,
		Phone:        v.Phone,
		PasswordHash: v.PasswordHash,
		AvatarURL:    v.AvatarURL,
		ShopBuilt:    v.ShopBuilt,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	if v.Email != nil {
		rec.Email = *v.Email
	}
	return rec
}
