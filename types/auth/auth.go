package auth

import (
	"fmt"
	"time"
)

// SignupRequest is the payload for /signup/user and /signup/vendor.
type SignupRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"required,min=10,max=20"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r SignupRequest) Validate() error {
	if r.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// LoginEmailRequest is the payload for /login/email.
type LoginEmailRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginEmailRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return fmt.Errorf("email and password required")
	}
	return nil
}

// LoginPhoneRequest is the payload for /login/phone.
type LoginPhoneRequest struct {
	Phone    string `json:"phone" validate:"required,min=10,max=20"`
	Password string `json:"password" validate:"required"`
}

func (r LoginPhoneRequest) Validate() error {
	if r.Phone == "" || r.Password == "" {
		return fmt.Errorf("phone and password required")
	}
	return nil
}

// AccountView enumerates exactly the account fields eligible for client
// exposure. Credential hashes never pass through this struct.
type AccountView struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	AccountType string    `json:"user_type"`
	FullName    string    `json:"full_name"`
	AvatarURL   string    `json:"avatar_url"`
	ShopBuilt   bool      `json:"shop_built"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoginResponse flattens the account view into the top-level body the
// frontend expects, alongside the redirect target.
type LoginResponse struct {
	Success bool `json:"success"`
	AccountView
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
}
