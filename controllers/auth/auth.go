package auth

import (
	"localhunt-auth/logger"
	"localhunt-auth/models/account"
	otpService "localhunt-auth/services/otp"
	"localhunt-auth/types"
	authTypes "localhunt-auth/types/auth"
	"localhunt-auth/utils"

	"github.com/gofiber/fiber/v2"
)

// AccountStore is the account persistence surface the handlers need.
type AccountStore interface {
	FindByPhone(phone string) (*account.Record, error)
	FindByEmail(email string) (*account.Record, error)
	CreateUser(u *account.User) error
	CreateVendor(v *account.Vendor) error
}

// AuthController handles signup and login for both account kinds.
type AuthController struct {
	accounts       AccountStore
	engine         *otpService.Engine
	loggerInstance *logger.AsyncLogger
}

func NewAuthController(accounts AccountStore, engine *otpService.Engine, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{accounts: accounts, engine: engine, loggerInstance: asyncLogger}
}

// SignupUser registers a buyer account after OTP verification.
func (h *AuthController) SignupUser(c *fiber.Ctx) error {
	return h.signup(c, account.TypeUser)
}

// SignupVendor registers a seller account after OTP verification.
func (h *AuthController) SignupVendor(c *fiber.Ctx) error {
	return h.signup(c, account.TypeVendor)
}

func (h *AuthController) signup(c *fiber.Ctx, kind account.Type) error {
	var req authTypes.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse signup request", err)
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

	phone := utils.NormalizePhone(req.Phone)

	verified, err := h.engine.HasVerified(phone)
	if err != nil {
		logger.Error("OTP lookup failed during signup", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not check phone verification",
		})
	}
	if !verified {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Phone not verified. Please verify OTP before signup.",
		})
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Password hashing failed during signup", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Could not create account",
		})
	}

	var email *string
	if req.Email != "" {
		email = &req.Email
	}

	var created interface{}
	var message string
	if kind == account.TypeVendor {
		vendor := account.Vendor{
			FullName:         req.FullName,
			Email:            email,
			Phone:            phone,
			PasswordHash:     hash,
			IsMobileVerified: true,
		}
		if err := h.accounts.CreateVendor(&vendor); err != nil {
			logger.Error("Vendor insert failed", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Success: false,
				Message: "Database error",
			})
		}
		created = vendor
		message = "Vendor registered successfully"
	} else {
		user := account.User{
			FullName:         req.FullName,
			Email:            email,
			Phone:            phone,
			PasswordHash:     hash,
			IsMobileVerified: true,
		}
		if err := h.accounts.CreateUser(&user); err != nil {
			logger.Error("User insert failed", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Success: false,
				Message: "Database error",
			})
		}
		created = user
		message = "User registered successfully"
	}

	h.loggerInstance.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Success: true,
		Message: message,
		Data:    created,
	})
}

// LoginEmail authenticates by email, checking users then vendors.
func (h *AuthController) LoginEmail(c *fiber.Ctx) error {
	var req authTypes.LoginEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Email and password required",
		})
	}

	rec, err := h.accounts.FindByEmail(req.Email)
	return h.respondLogin(c, rec, err, req.Password)
}

// LoginPhone authenticates by phone, checking users then vendors.
func (h *AuthController) LoginPhone(c *fiber.Ctx) error {
	var req authTypes.LoginPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Success: false,
			Message: "Phone and password required",
		})
	}

	rec, err := h.accounts.FindByPhone(utils.NormalizePhone(req.Phone))
	return h.respondLogin(c, rec, err, req.Password)
}

func (h *AuthController) respondLogin(c *fiber.Ctx, rec *account.Record, lookupErr error, password string) error {
	if lookupErr != nil {
		logger.Error("Account lookup failed during login", lookupErr)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Success: false,
			Message: "Server error",
		})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Success: false,
			Message: "Account not found",
		})
	}
	if !utils.CheckPassword(rec.PasswordHash, password) {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Success: false,
			Message: "Invalid password",
		})
	}

	redirect := "/user-dashboard"
	message := "User login successful"
	accountType := "user"
	if rec.Type == account.TypeVendor {
		redirect = "/vendor-dashboard"
		message = "Vendor login successful"
		accountType = "vendor"
	}

	h.loggerInstance.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(authTypes.LoginResponse{
		Success: true,
		AccountView: authTypes.AccountView{
			ID:          rec.ID,
			UserID:      rec.ID,
			Email:       rec.Email,
			Phone:       rec.Phone,
			AccountType: accountType,
			FullName:    rec.FullName,
			AvatarURL:   rec.AvatarURL,
			ShopBuilt:   rec.ShopBuilt,
			CreatedAt:   rec.CreatedAt,
			UpdatedAt:   rec.UpdatedAt,
		},
		Redirect: redirect,
		Message:  message,
	})
}
