package otp

import (
	"fmt"
)

// SendOTPRequest is the payload for /send-otp and /password-reset/request.
type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=20"`
}

func (r SendOTPRequest) Validate() error {
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}

// VerifyOTPRequest is the payload for /verify-otp and /password-reset/verify.
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=20"`
	OTP   string `json:"otp" validate:"required,len=4"`
}

func (r VerifyOTPRequest) Validate() error {
	if r.Phone == "" || r.OTP == "" {
		return fmt.Errorf("phone and otp are required")
	}
	return nil
}
