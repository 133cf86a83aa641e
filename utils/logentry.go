package utils

import (
	"strings"
	"time"

	"localhunt-auth/types"

	"github.com/gofiber/fiber/v2"
)

// CreateSanitizedLogEntry deep-copies request/response data from the fiber
// context into a LogEntry safe to hand to the async logger. Credential
// fields are redacted before the body is persisted.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(string(c.Body()))
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}

// sanitizeRequestBody blanks bodies that carry passwords or one-time codes
// so raw credentials never land in the log table.
func sanitizeRequestBody(body string) string {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "password") || strings.Contains(lower, "\"otp\"") {
		return "[REDACTED_CREDENTIAL_BODY]"
	}
	if len(body) > 4096 {
		return "[LARGE_REQUEST_BODY]"
	}
	return body
}
