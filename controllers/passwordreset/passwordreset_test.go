package passwordreset

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"localhunt-auth/logger"
	"localhunt-auth/models/account"
	model "localhunt-auth/models/otp"
	"localhunt-auth/models/resettoken"
	deviceService "localhunt-auth/services/device"
	otpService "localhunt-auth/services/otp"
	resetService "localhunt-auth/services/passwordreset"
	"localhunt-auth/types"
	"localhunt-auth/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodeStore struct {
	rows []*model.OneTimeCode
}

func (f *fakeCodeStore) Insert(row *model.OneTimeCode) error {
	row.ID = uint(len(f.rows) + 1)
	row.CreatedAt = time.Now()
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeCodeStore) LatestByPhone(phone string) (*model.OneTimeCode, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].Phone == phone {
			return f.rows[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCodeStore) LatestVerifiedByPhone(phone string) (*model.OneTimeCode, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].Phone == phone && f.rows[i].Status == model.StatusVerified {
			return f.rows[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCodeStore) byID(id uint) *model.OneTimeCode {
	for _, row := range f.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (f *fakeCodeStore) MarkSent(id uint, sentVia string) error {
	row := f.byID(id)
	row.Status = model.StatusSent
	row.SentVia = &sentVia
	return nil
}

func (f *fakeCodeStore) MarkFailed(id uint) error {
	f.byID(id).Status = model.StatusFailed
	return nil
}

func (f *fakeCodeStore) MarkVerified(id uint, at time.Time) error {
	row := f.byID(id)
	row.Status = model.StatusVerified
	row.VerifiedAt = &at
	return nil
}

func (f *fakeCodeStore) MarkExpired(id uint) error {
	f.byID(id).Status = model.StatusExpired
	return nil
}

func (f *fakeCodeStore) IncrementAttempts(id uint) error {
	f.byID(id).Attempts++
	return nil
}

type fakeDeliverer struct {
	result deviceService.SendResult
}

func (f *fakeDeliverer) SendWithFallback(to, content string, tryLimit int) deviceService.SendResult {
	return f.result
}

type fakeAccounts struct {
	record *account.Record

	updatedHash string
	updateCalls int
}

func (f *fakeAccounts) FindByPhone(phone string) (*account.Record, error) {
	if f.record != nil && f.record.Phone == phone {
		out := *f.record
		return &out, nil
	}
	return nil, nil
}

func (f *fakeAccounts) UpdatePasswordHashByPhone(t account.Type, phone, hash string) error {
	f.updateCalls++
	f.updatedHash = hash
	return nil
}

type fakeTokenStore struct {
	rows      []*resettoken.ResetToken
	insertErr error
}

func (f *fakeTokenStore) Insert(row *resettoken.ResetToken) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	row.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeTokenStore) FindByToken(token string) (*resettoken.ResetToken, error) {
	for _, row := range f.rows {
		if row.Token == token {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeTokenStore) MarkUsed(id uint) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Used = true
		}
	}
	return nil
}

const testPhone = "+919876543210"

type testEnv struct {
	app      *fiber.App
	codes    *fakeCodeStore
	tokens   *fakeTokenStore
	accounts *fakeAccounts
	engine   *otpService.Engine
}

func newEnv(delivered bool) *testEnv {
	env := &testEnv{
		codes:    &fakeCodeStore{},
		tokens:   &fakeTokenStore{},
		accounts: &fakeAccounts{record: &account.Record{Type: account.TypeVendor, ID: 7, Phone: testPhone}},
	}
	result := deviceService.SendResult{Delivered: delivered, Device: "+911111111111"}
	if !delivered {
		result = deviceService.SendResult{LastError: "all devices failed"}
	}
	env.engine = otpService.NewEngine(env.codes, &fakeDeliverer{result: result}, "test-salt")
	reset := resetService.NewService(env.tokens, env.accounts)
	ctl := NewPasswordResetController(env.engine, reset, env.accounts, logger.NewAsyncLogger(nil))

	env.app = fiber.New()
	env.app.Post("/password-reset/request", ctl.Request)
	env.app.Post("/password-reset/verify", ctl.Verify)
	env.app.Post("/password-reset/complete", ctl.Complete)
	return env
}

func (env *testEnv) seedSentRow(code string, window time.Duration) {
	env.codes.Insert(&model.OneTimeCode{
		Phone:     testPhone,
		CodeHash:  env.engine.HashCode(code),
		Status:    model.StatusSent,
		ExpiresAt: time.Now().Add(window),
	})
}

func (env *testEnv) seedToken(window time.Duration) string {
	id := uint(7)
	token := uuid.NewString()
	env.tokens.Insert(&resettoken.ResetToken{
		Token:       token,
		AccountType: account.TypeVendor,
		AccountID:   &id,
		ExpiresAt:   time.Now().Add(window),
	})
	return token
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, types.ApiResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var api types.ApiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&api))
	return resp.StatusCode, api
}

func TestRequestUnknownPhone(t *testing.T) {
	env := newEnv(true)
	env.accounts.record = nil

	status, api := postJSON(t, env.app, "/password-reset/request", fiber.Map{"phone": "9876543210"})

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Account not found for this phone", api.Message)
	assert.Empty(t, env.codes.rows, "no OTP may be issued for an unknown phone")
}

func TestRequestSendsOTP(t *testing.T) {
	env := newEnv(true)

	status, api := postJSON(t, env.app, "/password-reset/request", fiber.Map{"phone": "9876543210"})

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, api.Success)
	assert.Equal(t, 180, api.ExpiresIn)
	require.Len(t, env.codes.rows, 1)
	assert.Equal(t, model.StatusSent, env.codes.rows[0].Status)
}

func TestRequestDeliveryExhaustion(t *testing.T) {
	env := newEnv(false)

	status, api := postJSON(t, env.app, "/password-reset/request", fiber.Map{"phone": "9876543210"})

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Failed to send OTP", api.Message)
	assert.Equal(t, model.StatusFailed, env.codes.rows[0].Status)
}

func TestVerifyIssuesResetToken(t *testing.T) {
	env := newEnv(true)
	env.seedSentRow("1234", time.Minute)

	status, api := postJSON(t, env.app, "/password-reset/verify", fiber.Map{"phone": "9876543210", "otp": "1234"})

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, api.Success)
	assert.Equal(t, "OTP verified", api.Message)
	assert.Equal(t, 900, api.ExpiresIn)
	_, err := uuid.Parse(api.Token)
	assert.NoError(t, err)
	require.Len(t, env.tokens.rows, 1)
	require.NotNil(t, env.tokens.rows[0].AccountID)
	assert.Equal(t, uint(7), *env.tokens.rows[0].AccountID)
}

func TestVerifyTokenInsertFailureStillReturnsToken(t *testing.T) {
	env := newEnv(true)
	env.seedSentRow("1234", time.Minute)
	env.tokens.insertErr = errors.New("store down")

	status, api := postJSON(t, env.app, "/password-reset/verify", fiber.Map{"phone": "9876543210", "otp": "1234"})

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, api.Success)
	assert.Equal(t, "OTP verified (token creation failed in DB)", api.Message)
	assert.NotEmpty(t, api.Token)
}

func TestVerifyInvalidCode(t *testing.T) {
	env := newEnv(true)
	env.seedSentRow("1234", time.Minute)

	status, api := postJSON(t, env.app, "/password-reset/verify", fiber.Map{"phone": "9876543210", "otp": "9999"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid OTP", api.Message)
	assert.Empty(t, env.tokens.rows)
}

func TestVerifyNoRequestOnRecord(t *testing.T) {
	env := newEnv(true)

	status, api := postJSON(t, env.app, "/password-reset/verify", fiber.Map{"phone": "9876543210", "otp": "1234"})

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No OTP request found for this number", api.Message)
}

func TestCompleteUpdatesPassword(t *testing.T) {
	env := newEnv(true)
	token := env.seedToken(time.Minute)

	status, api := postJSON(t, env.app, "/password-reset/complete", fiber.Map{
		"phone":        "9876543210",
		"token":        token,
		"new_password": "new-secret",
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Password updated", api.Message)
	assert.True(t, utils.CheckPassword(env.accounts.updatedHash, "new-secret"))
	assert.True(t, env.tokens.rows[0].Used)
}

func TestCompleteInvalidToken(t *testing.T) {
	env := newEnv(true)

	status, api := postJSON(t, env.app, "/password-reset/complete", fiber.Map{
		"phone":        "9876543210",
		"token":        uuid.NewString(),
		"new_password": "new-secret",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid token", api.Message)
	assert.Zero(t, env.accounts.updateCalls)
}

func TestCompleteTokenAlreadyUsed(t *testing.T) {
	env := newEnv(true)
	token := env.seedToken(time.Minute)
	env.tokens.rows[0].Used = true

	status, api := postJSON(t, env.app, "/password-reset/complete", fiber.Map{
		"phone":        "9876543210",
		"token":        token,
		"new_password": "new-secret",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Token already used", api.Message)
}

func TestCompleteExpiredToken(t *testing.T) {
	env := newEnv(true)
	token := env.seedToken(-time.Second)

	status, api := postJSON(t, env.app, "/password-reset/complete", fiber.Map{
		"phone":        "9876543210",
		"token":        token,
		"new_password": "new-secret",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Token expired", api.Message)
}

func TestCompletePhoneWithoutAccount(t *testing.T) {
	env := newEnv(true)
	token := env.seedToken(time.Minute)
	env.accounts.record = nil

	status, api := postJSON(t, env.app, "/password-reset/complete", fiber.Map{
		"phone":        "9876543210",
		"token":        token,
		"new_password": "new-secret",
	})

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No account found for phone", api.Message)
}

func TestCompleteTokenBoundToDifferentAccount(t *testing.T) {
	env := newEnv(true)
	token := env.seedToken(time.Minute)
	env.accounts.record = &account.Record{Type: account.TypeVendor, ID: 99, Phone: testPhone}

	status, api := postJSON(t, env.app, "/password-reset/complete", fiber.Map{
		"phone":        "9876543210",
		"token":        token,
		"new_password": "new-secret",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Token does not match account", api.Message)
}
