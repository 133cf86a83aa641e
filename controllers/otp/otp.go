package otp

import (
	"time"

	"localhunt-auth/logger"
	model "localhunt-auth/models/otp"
	otpService "localhunt-auth/services/otp"
	"localhunt-auth/types"
	otpTypes "localhunt-auth/types/otp"
	"localhunt-auth/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	signupWindow  = 2 * time.Minute
	signupContent = "Your Localhunt confirmation code is: %s (valid for 2 minutes)"
)

// Controller handles the public OTP endpoints used by the signup flow.
type Controller struct {
	Engine *otpService.Engine
	Logger *logger.AsyncLogger
}

func NewOTPController(engine *otpService.Engine, asyncLogger *logger.AsyncLogger) *Controller {
	return &Controller{Engine: engine, Logger: asyncLogger}
}

// SendOTP issues and delivers a code to the given phone number.
func (oc *Controller) SendOTP(c *fiber.Ctx) error {
	var req otpTypes.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	phone := utils.NormalizePhone(req.Phone)

	result, err := oc.Engine.Issue(phone, signupContent, signupWindow)
	if err != nil {
		logger.Error("OTP issue failed for "+phone, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not create OTP",
		})
	}

	oc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	if !result.Delivered {
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Success: false,
			Message: "Failed to send SMS",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "OTP sent",
	})
}

// VerifyOTP checks a submitted code against the phone's current OTP row.
func (oc *Controller) VerifyOTP(c *fiber.Ctx) error {
	var req otpTypes.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	phone := utils.NormalizePhone(req.Phone)

	result, err := oc.Engine.Verify(phone, req.OTP)
	if err != nil {
		logger.Error("OTP verify failed for "+phone, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not verify OTP",
		})
	}

	oc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return RespondVerify(c, result, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Success: true,
			Message: "OTP verified",
		})
	})
}

// RespondVerify maps a verification outcome onto the HTTP taxonomy,
// delegating the Verified case to onVerified. Shared with the
// password-reset controller.
func RespondVerify(c *fiber.Ctx, result *otpService.VerifyResult, onVerified func(*fiber.Ctx) error) error {
	switch result.Status {
	case otpService.NotFound:
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Success: false,
			Message: "No OTP request found for this number",
		})
	case otpService.AlreadyFinalized:
		msg := "OTP already VERIFIED"
		if result.Finalized == model.StatusExpired {
			msg = "OTP already EXPIRED"
		}
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: msg,
		})
	case otpService.Expired:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "OTP expired",
		})
	case otpService.InvalidCode:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid OTP",
		})
	default:
		return onVerified(c)
	}
}
