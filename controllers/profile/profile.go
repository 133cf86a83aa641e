package profile

import (
	"fmt"

	"localhunt-auth/logger"
	"localhunt-auth/models/account"
	"localhunt-auth/services/device"
	otpService "localhunt-auth/services/otp"
	"localhunt-auth/services/phonechange"
	"localhunt-auth/types"
	profileTypes "localhunt-auth/types/profile"
	"localhunt-auth/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	currentNumberContent = "Your Localhunt confirmation code to verify your number is %s. It expires in 3 minutes."
	newNumberContent     = "Your Localhunt confirmation code to update your number is %s. It expires in 3 minutes."
)

// AccountStore is the vendor persistence surface the handlers need.
type AccountStore interface {
	UpdateVendorProfile(id uint, fullName, email string) error
	VendorByID(id uint) (*account.Vendor, error)
	UpdateVendorPhone(id uint, phone string) error
	UpdateVendorPassword(id uint, hash string) error
}

// Controller handles vendor profile updates and the two-step phone-change
// flow. Phone-change codes live in the in-memory store, not the otps
// table.
type Controller struct {
	Accounts AccountStore
	Pool     *device.Pool
	Codes    *phonechange.Store
	Logger   *logger.AsyncLogger
	Salt     string
}

func NewProfileController(accounts AccountStore, pool *device.Pool, codes *phonechange.Store, asyncLogger *logger.AsyncLogger, salt string) *Controller {
	return &Controller{Accounts: accounts, Pool: pool, Codes: codes, Logger: asyncLogger, Salt: salt}
}

// UpdateProfile rewrites a vendor's name and email.
func (pc *Controller) UpdateProfile(c *fiber.Ctx) error {
	var req profileTypes.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Missing vendor_id",
		})
	}

	if err := pc.Accounts.UpdateVendorProfile(req.VendorID, req.FullName, req.Email); err != nil {
		logger.Error("Vendor profile update failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Database error",
		})
	}

	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Profile updated successfully",
	})
}

// SendCurrentOTP sends a code to the vendor's current number. The send
// outcome does not gate the response; an undelivered code simply expires.
func (pc *Controller) SendCurrentOTP(c *fiber.Ctx) error {
	var req profileTypes.SendCurrentOTPRequest
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

	code, err := otpService.GenerateCode()
	if err != nil {
		logger.Error("Failed to generate phone-change code", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not create OTP",
		})
	}

	pc.Codes.Put(phone, phonechange.Hash(phone, code, pc.Salt), 0)

	result := pc.Pool.SendWithFallback(phone, fmt.Sprintf(currentNumberContent, code), 0)
	if !result.Delivered {
		logger.Warning("Phone-change OTP delivery failed for " + phone + ": " + result.LastError)
	}

	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "OTP sent to " + phone,
	})
}

// VerifyCurrentOTP confirms possession of the current number. The entry
// is kept for the next step of the flow.
func (pc *Controller) VerifyCurrentOTP(c *fiber.Ctx) error {
	var req profileTypes.VerifyCurrentOTPRequest
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

	entry, ok := pc.Codes.Get(phone)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "No OTP found",
		})
	}
	if entry.IsExpired() {
		pc.Codes.Delete(phone)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "OTP expired",
		})
	}
	if phonechange.Hash(phone, req.OTP, pc.Salt) != entry.Hash {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid OTP",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Old number verified successfully",
	})
}

// SendNewOTP sends a code to the number the vendor wants to switch to.
func (pc *Controller) SendNewOTP(c *fiber.Ctx) error {
	var req profileTypes.SendNewOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Missing required fields",
		})
	}

	newPhone := utils.NormalizePhone(req.NewPhone)

	code, err := otpService.GenerateCode()
	if err != nil {
		logger.Error("Failed to generate phone-change code", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not create OTP",
		})
	}

	pc.Codes.Put(newPhone, phonechange.Hash(newPhone, code, pc.Salt), req.VendorID)

	result := pc.Pool.SendWithFallback(newPhone, fmt.Sprintf(newNumberContent, code), 0)
	if !result.Delivered {
		logger.Warning("Phone-change OTP delivery failed for " + newPhone + ": " + result.LastError)
	}

	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "OTP sent to " + newPhone,
	})
}

// VerifyNewPhone confirms the new number and commits the phone change.
func (pc *Controller) VerifyNewPhone(c *fiber.Ctx) error {
	var req profileTypes.VerifyNewPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Missing new_phone or otp",
		})
	}

	newPhone := utils.NormalizePhone(req.NewPhone)

	entry, ok := pc.Codes.Get(newPhone)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "No OTP found",
		})
	}
	if entry.IsExpired() {
		pc.Codes.Delete(newPhone)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "OTP expired",
		})
	}
	if phonechange.Hash(newPhone, req.OTP, pc.Salt) != entry.Hash {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid OTP",
		})
	}

	if err := pc.Accounts.UpdateVendorPhone(entry.VendorID, newPhone); err != nil {
		logger.Error("Vendor phone update failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Database error",
		})
	}
	pc.Codes.Delete(newPhone)

	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Phone number updated successfully",
		Data:    fiber.Map{"phone": newPhone},
	})
}

// UpdatePassword changes a vendor's password after checking the current
// one.
func (pc *Controller) UpdatePassword(c *fiber.Ctx) error {
	var req profileTypes.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Missing fields",
		})
	}

	vendor, err := pc.Accounts.VendorByID(req.VendorID)
	if err != nil {
		logger.Error("Vendor lookup failed during password update", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Database error",
		})
	}
	if vendor == nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Success: false,
			Message: "Vendor not found",
		})
	}

	if !utils.CheckPassword(vendor.PasswordHash, req.CurrentPassword) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Current password incorrect",
		})
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("Password hashing failed during update", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not update password",
		})
	}
	if err := pc.Accounts.UpdateVendorPassword(req.VendorID, hash); err != nil {
		logger.Error("Vendor password update failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Database error",
		})
	}

	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Message: "Password updated successfully",
	})
}
