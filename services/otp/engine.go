package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"localhunt-auth/logger"
	model "localhunt-auth/models/otp"
	"localhunt-auth/services/device"
)

// CodeLength is the number of digits in a generated code.
const CodeLength = 4

// CodeStore is the persistence surface the engine needs.
type CodeStore interface {
	Insert(row *model.OneTimeCode) error
	LatestByPhone(phone string) (*model.OneTimeCode, error)
	LatestVerifiedByPhone(phone string) (*model.OneTimeCode, error)
	MarkSent(id uint, sentVia string) error
	MarkFailed(id uint) error
	MarkVerified(id uint, at time.Time) error
	MarkExpired(id uint) error
	IncrementAttempts(id uint) error
}

// Deliverer sends the plaintext code out, failing over across sender
// identities.
type Deliverer interface {
	SendWithFallback(to, content string, tryLimit int) device.SendResult
}

// Engine issues, delivers and verifies one-time codes. Codes are stored
// only as a salted hash; the plaintext exists solely in the outbound
// message body.
type Engine struct {
	store     CodeStore
	deliverer Deliverer
	salt      string
}

func NewEngine(store CodeStore, deliverer Deliverer, salt string) *Engine {
	return &Engine{store: store, deliverer: deliverer, salt: salt}
}

// GenerateCode draws a uniform 4-digit code, leading digit nonzero.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// HashCode returns the hex sha256 of code+salt. Deterministic so a later
// submission can be compared; changing the salt invalidates every
// in-flight code.
func (e *Engine) HashCode(code string) string {
	sum := sha256.Sum256([]byte(code + e.salt))
	return hex.EncodeToString(sum[:])
}

// IssueResult reports the delivery half of an issuance.
type IssueResult struct {
	Delivered     bool
	Device        string
	FailureReason string
}

// Issue generates a code, inserts a PENDING row expiring after window,
// and delivers the plaintext via the device pool. contentFormat must
// contain one %s verb for the code. Insert failure is a hard failure and
// no SMS is attempted; the post-delivery status write is best-effort.
func (e *Engine) Issue(phone, contentFormat string, window time.Duration) (*IssueResult, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	row := &model.OneTimeCode{
		Phone:     phone,
		CodeHash:  e.HashCode(code),
		Status:    model.StatusPending,
		ExpiresAt: time.Now().Add(window),
	}
	if err := e.store.Insert(row); err != nil {
		return nil, fmt.Errorf("failed to insert otp row: %w", err)
	}

	result := e.deliverer.SendWithFallback(phone, fmt.Sprintf(contentFormat, code), 0)
	if result.Delivered {
		if err := e.store.MarkSent(row.ID, result.Device); err != nil {
			logger.Error("Failed to mark otp row SENT", err)
		}
		return &IssueResult{Delivered: true, Device: result.Device}, nil
	}

	if err := e.store.MarkFailed(row.ID); err != nil {
		logger.Error("Failed to mark otp row FAILED", err)
	}
	return &IssueResult{FailureReason: result.LastError}, nil
}

// VerifyStatus classifies the outcome of a verification attempt.
type VerifyStatus int

const (
	Verified VerifyStatus = iota
	InvalidCode
	Expired
	AlreadyFinalized
	NotFound
)

// VerifyResult carries the classification plus, for AlreadyFinalized,
// the terminal status the row is stuck in.
type VerifyResult struct {
	Status    VerifyStatus
	Finalized model.Status
}

// Verify checks the submitted code against the phone's current (most
// recently created) row. Terminal rows are rejected without mutation;
// a live row past its expiry is lazily transitioned to EXPIRED. A wrong
// code increments the attempt counter best-effort. There is no
// maximum-attempt lockout; only expiry ends a code's liveness.
func (e *Engine) Verify(phone, code string) (*VerifyResult, error) {
	row, err := e.store.LatestByPhone(phone)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &VerifyResult{Status: NotFound}, nil
	}

	if row.IsTerminal() {
		return &VerifyResult{Status: AlreadyFinalized, Finalized: row.Status}, nil
	}

	if row.IsExpired() {
		if err := e.store.MarkExpired(row.ID); err != nil {
			logger.Error("Failed to mark otp row EXPIRED", err)
		}
		return &VerifyResult{Status: Expired}, nil
	}

	if e.HashCode(code) != row.CodeHash {
		if err := e.store.IncrementAttempts(row.ID); err != nil {
			logger.Error("Failed to increment otp attempts", err)
		}
		return &VerifyResult{Status: InvalidCode}, nil
	}

	if err := e.store.MarkVerified(row.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to mark otp verified: %w", err)
	}
	return &VerifyResult{Status: Verified}, nil
}

// HasVerified reports whether the phone's latest VERIFIED row exists,
// gating signup.
func (e *Engine) HasVerified(phone string) (bool, error) {
	row, err := e.store.LatestVerifiedByPhone(phone)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}
