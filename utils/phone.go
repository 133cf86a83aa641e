package utils

import (
	"strings"
)

// NormalizePhone canonicalizes an Indian mobile number to +91 followed by
// ten digits. Accepts +91XXXXXXXXXX, 91XXXXXXXXXX, bare ten digits, and
// foreign-prefixed or formatted input, from which the last ten digits are
// taken. Idempotent on already-canonical input.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")

	if strings.HasPrefix(phone, "+91") && len(phone) == 13 {
		return phone
	}
	if strings.HasPrefix(phone, "91") && len(phone) == 12 {
		return "+" + phone
	}
	if len(phone) == 10 && isDigits(phone) {
		return "+91" + phone
	}

	// Foreign prefix or free-form input: keep the trailing ten digits.
	digits := keepDigits(phone)
	if len(digits) >= 10 {
		return "+91" + digits[len(digits)-10:]
	}
	return "+91" + digits
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
