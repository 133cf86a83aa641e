package passwordreset

import (
	"time"

	otpController "localhunt-auth/controllers/otp"
	"localhunt-auth/logger"
	"localhunt-auth/models/account"
	otpService "localhunt-auth/services/otp"
	resetService "localhunt-auth/services/passwordreset"
	"localhunt-auth/types"
	otpTypes "localhunt-auth/types/otp"
	resetTypes "localhunt-auth/types/passwordreset"
	"localhunt-auth/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	resetWindow  = 3 * time.Minute
	resetContent = "Your password reset code is: %s (valid for 3 minutes)"
)

// AccountStore resolves the account owning a phone number.
type AccountStore interface {
	FindByPhone(phone string) (*account.Record, error)
}

// Controller drives the three password-reset steps: request an OTP,
// verify it for a reset token, consume the token with a new password.
type Controller struct {
	Engine   *otpService.Engine
	Reset    *resetService.Service
	Accounts AccountStore
	Logger   *logger.AsyncLogger
}

func NewPasswordResetController(engine *otpService.Engine, reset *resetService.Service, accounts AccountStore, asyncLogger *logger.AsyncLogger) *Controller {
	return &Controller{Engine: engine, Reset: reset, Accounts: accounts, Logger: asyncLogger}
}

// Request sends a reset OTP to a phone that owns an account.
func (pc *Controller) Request(c *fiber.Ctx) error {
	var req otpTypes.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Missing phone",
		})
	}

	phone := utils.NormalizePhone(req.Phone)

	rec, err := pc.Accounts.FindByPhone(phone)
	if err != nil {
		logger.Error("Account lookup failed during reset request", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Server error",
		})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Success: false,
			Message: "Account not found for this phone",
		})
	}

	result, err := pc.Engine.Issue(phone, resetContent, resetWindow)
	if err != nil {
		logger.Error("Reset OTP issue failed for "+phone, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not create OTP",
		})
	}

	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	if !result.Delivered {
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Success: false,
			Message: "Failed to send OTP",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success:   true,
		Message:   "OTP sent",
		ExpiresIn: int(resetWindow.Seconds()),
	})
}

// Verify checks the reset OTP and, on success, issues a reset token.
func (pc *Controller) Verify(c *fiber.Ctx) error {
	var req otpTypes.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Missing phone or otp",
		})
	}

	phone := utils.NormalizePhone(req.Phone)

	result, err := pc.Engine.Verify(phone, req.OTP)
	if err != nil {
		logger.Error("Reset OTP verify failed for "+phone, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not verify OTP",
		})
	}

	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return otpController.RespondVerify(c, result, func(c *fiber.Ctx) error {
		token, issueErr := pc.Reset.IssueAfterVerification(phone)
		if issueErr != nil {
			// Degraded success: the OTP is verified and the token value is
			// returned even though its row could not be persisted.
			return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
				Success: true,
				Token:   token.Token,
				Message: "OTP verified (token creation failed in DB)",
			})
		}
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Success:   true,
			Token:     token.Token,
			Message:   "OTP verified",
			ExpiresIn: int(resetService.TokenTTL.Seconds()),
		})
	})
}

// Complete consumes a reset token and writes the new password.
func (pc *Controller) Complete(c *fiber.Ctx) error {
	var req resetTypes.CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Missing phone, token or new password",
		})
	}

	phone := utils.NormalizePhone(req.Phone)

	status, err := pc.Reset.Consume(req.Token, phone, req.NewPassword)
	if err != nil {
		logger.Error("Reset token consume failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Server error",
		})
	}

	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	switch status {
	case resetService.InvalidToken:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid token",
		})
	case resetService.AlreadyUsed:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Token already used",
		})
	case resetService.Expired:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Token expired",
		})
	case resetService.AccountNotFound:
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Success: false,
			Message: "No account found for phone",
		})
	case resetService.PhoneMismatch:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Token does not match phone",
		})
	case resetService.AccountMismatch:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Token does not match account",
		})
	default:
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Success: true,
			Message: "Password updated",
		})
	}
}
