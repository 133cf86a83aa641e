package account

import (
	"time"
)

// Type discriminates which table an account lives in.
type Type string

const (
	TypeUser   Type = "USER"
	TypeVendor Type = "VENDOR"
)

// User is a buyer account.
type User struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName         string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email            *string   `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone            string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	PasswordHash     string    `gorm:"type:varchar(255);not null" json:"-"`
	IsMobileVerified bool      `gorm:"default:false" json:"is_mobile_verified"`
	AvatarURL        string    `gorm:"type:varchar(2048)" json:"avatar_url"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Record is a kind-agnostic projection of a user or vendor row, used
// where a flow resolves "the account owning this phone" without caring
// which table it came from.
type Record struct {
	Type         Type
	ID           uint
	FullName     string
	Email        string
	Phone        string
	PasswordHash string
	AvatarURL    string
	ShopBuilt    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Vendor is a seller account. Schema mirrors User plus the shop flag.
type Vendor struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName         string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email            *string   `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone            string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	PasswordHash     string    `gorm:"type:varchar(255);not null" json:"-"`
	IsMobileVerified bool      `gorm:"default:false" json:"is_mobile_verified"`
	AvatarURL        string    `gorm:"type:varchar(2048)" json:"avatar_url"`
	ShopBuilt        bool      `gorm:"default:false" json:"shop_built"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
