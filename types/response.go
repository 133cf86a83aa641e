package types

// ApiResponse is the common JSON envelope. Every endpoint reports a
// boolean success flag and a short human-readable message; internals
// and stack traces are never exposed.
type ApiResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Token     string      `json:"token,omitempty"`
	ExpiresIn int         `json:"expires_in,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}
