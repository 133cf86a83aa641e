package passwordreset

import (
	"fmt"
)

// CompleteRequest is the payload for /password-reset/complete.
type CompleteRequest struct {
	Phone       string `json:"phone" validate:"required,min=10,max=20"`
	Token       string `json:"token" validate:"required,len=36"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func (r CompleteRequest) Validate() error {
	if r.Phone == "" || r.Token == "" || r.NewPassword == "" {
		return fmt.Errorf("phone, token and new_password are required")
	}
	return nil
}
