package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "+919876543210", "+919876543210"},
		{"country code without plus", "919876543210", "+919876543210"},
		{"bare ten digits", "9876543210", "+919876543210"},
		{"spaces and dashes", " 98765-43210 ", "+919876543210"},
		{"foreign prefix keeps last ten digits", "+4419876543210", "+919876543210"},
		{"formatted with plus91", "+91 98765 43210", "+919876543210"},
		{"short input keeps digits", "12345", "+9112345"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.input))
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	once := NormalizePhone("98765 43210")
	assert.Equal(t, once, NormalizePhone(once))
}
