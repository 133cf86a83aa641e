package profile

import (
	"fmt"
)

// UpdateProfileRequest updates a vendor's display fields.
type UpdateProfileRequest struct {
	VendorID uint   `json:"vendor_id" validate:"required"`
	FullName string `json:"full_name" validate:"omitempty,max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (r UpdateProfileRequest) Validate() error {
	if r.VendorID == 0 {
		return fmt.Errorf("vendor_id is required")
	}
	return nil
}

// SendCurrentOTPRequest starts the phone-change flow on the current number.
type SendCurrentOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=20"`
}

func (r SendCurrentOTPRequest) Validate() error {
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}

// VerifyCurrentOTPRequest verifies the current number's code.
type VerifyCurrentOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=20"`
	OTP   string `json:"otp" validate:"required,len=4"`
}

func (r VerifyCurrentOTPRequest) Validate() error {
	if r.Phone == "" || r.OTP == "" {
		return fmt.Errorf("phone and otp are required")
	}
	return nil
}

// SendNewOTPRequest sends a code to the number the vendor wants to switch to.
type SendNewOTPRequest struct {
	NewPhone string `json:"new_phone" validate:"required,min=10,max=20"`
	VendorID uint   `json:"vendor_id" validate:"required"`
}

func (r SendNewOTPRequest) Validate() error {
	if r.NewPhone == "" {
		return fmt.Errorf("new_phone is required")
	}
	if r.VendorID == 0 {
		return fmt.Errorf("vendor_id is required")
	}
	return nil
}

// VerifyNewPhoneRequest confirms the new number and commits the change.
type VerifyNewPhoneRequest struct {
	NewPhone string `json:"new_phone" validate:"required,min=10,max=20"`
	OTP      string `json:"otp" validate:"required,len=4"`
}

func (r VerifyNewPhoneRequest) Validate() error {
	if r.NewPhone == "" || r.OTP == "" {
		return fmt.Errorf("new_phone and otp are required")
	}
	return nil
}

// UpdatePasswordRequest changes a vendor's password after checking the
// current one.
type UpdatePasswordRequest struct {
	VendorID        uint   `json:"vendor_id" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func (r UpdatePasswordRequest) Validate() error {
	if r.VendorID == 0 || r.CurrentPassword == "" || r.NewPassword == "" {
		return fmt.Errorf("vendor_id, current_password and new_password are required")
	}
	return nil
}
