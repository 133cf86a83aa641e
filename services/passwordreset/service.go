package passwordreset

import (
	"time"

	"localhunt-auth/logger"
	"localhunt-auth/models/account"
	"localhunt-auth/models/resettoken"
	"localhunt-auth/utils"

	"github.com/google/uuid"
)

// TokenTTL bounds how long an issued reset token stays consumable.
const TokenTTL = 15 * time.Minute

// TokenStore is the persistence surface for reset tokens.
type TokenStore interface {
	Insert(row *resettoken.ResetToken) error
	FindByToken(token string) (*resettoken.ResetToken, error)
	MarkUsed(id uint) error
}

// AccountStore resolves accounts by phone and writes credential hashes.
type AccountStore interface {
	FindByPhone(phone string) (*account.Record, error)
	UpdatePasswordHashByPhone(t account.Type, phone, hash string) error
}

// Service converts a successful OTP verification into a single-use
// password-change authorization.
type Service struct {
	tokens   TokenStore
	accounts AccountStore
}

func NewService(tokens TokenStore, accounts AccountStore) *Service {
	return &Service{tokens: tokens, accounts: accounts}
}

// IssueAfterVerification creates a token for the account owning phone.
// Callers must have verified the phone's current OTP first. Account
// resolution failure still issues the token with type/id unset; it can
// never be consumed but keeps the audit row. The returned error only
// signals that the token row could not be persisted — callers treat that
// as a degraded success.
func (s *Service) IssueAfterVerification(phone string) (*resettoken.ResetToken, error) {
	row := &resettoken.ResetToken{
		Token:       uuid.NewString(),
		AccountType: account.TypeUser,
		ExpiresAt:   time.Now().Add(TokenTTL),
	}

	rec, err := s.accounts.FindByPhone(phone)
	if err != nil {
		logger.Error("Account resolution failed during token issue for "+phone, err)
	}
	if rec != nil {
		row.AccountType = rec.Type
		id := rec.ID
		row.AccountID = &id
	}

	if err := s.tokens.Insert(row); err != nil {
		logger.Error("Reset token insert failed", err)
		return row, err
	}
	return row, nil
}

// ConsumeStatus classifies a consumption attempt.
type ConsumeStatus int

const (
	Ok ConsumeStatus = iota
	InvalidToken
	AlreadyUsed
	Expired
	PhoneMismatch
	AccountMismatch
	AccountNotFound
)

// Consume authorizes exactly one password change. The credential write
// happens before the token is burned, so a store failure can never leave
// the token used with the password unchanged. A failure to mark the
// token used after a successful password write is logged and swallowed.
func (s *Service) Consume(tokenValue, phone, newPassword string) (ConsumeStatus, error) {
	row, err := s.tokens.FindByToken(tokenValue)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return InvalidToken, nil
	}
	if row.Used {
		return AlreadyUsed, nil
	}
	if row.IsExpired() {
		return Expired, nil
	}

	rec, err := s.accounts.FindByPhone(phone)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return AccountNotFound, nil
	}
	if rec.Type != row.AccountType {
		return PhoneMismatch, nil
	}
	// A token with no bound account id (issued while resolution failed)
	// or one bound to a different row of the same kind authorizes nothing.
	if row.AccountID == nil || *row.AccountID != rec.ID {
		return AccountMismatch, nil
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return 0, err
	}
	if err := s.accounts.UpdatePasswordHashByPhone(rec.Type, phone, hash); err != nil {
		return 0, err
	}

	if err := s.tokens.MarkUsed(row.ID); err != nil {
		logger.Error("Failed to mark reset token used", err)
	}
	return Ok, nil
}
