package routes

import (
	"os"
	"strconv"
	"strings"
	"time"

	authController "localhunt-auth/controllers/auth"
	otpController "localhunt-auth/controllers/otp"
	resetController "localhunt-auth/controllers/passwordreset"
	profileController "localhunt-auth/controllers/profile"
	"localhunt-auth/httpServices/httpsms"
	"localhunt-auth/logger"
	"localhunt-auth/repositories"
	deviceService "localhunt-auth/services/device"
	otpService "localhunt-auth/services/otp"
	resetService "localhunt-auth/services/passwordreset"
	"localhunt-auth/services/phonechange"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const defaultDeviceQuota = 80

// SetupRoutes wires repositories, services and controllers, then
// registers every endpoint.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	go asyncLogger.ProcessLog()

	salt := os.Getenv("OTP_HASH_SALT")
	if salt == "" {
		salt = "local-default-salt"
		logger.Warning("OTP_HASH_SALT not set; using local default salt")
	}

	accounts := repositories.NewAccountRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	deviceRepo := repositories.NewDeviceRepository(db)
	tokenRepo := repositories.NewResetTokenRepository(db)

	smsClient := httpsms.NewClient(os.Getenv("HTTPSMS_API_KEY"))
	pool := deviceService.NewPool(deviceRepo, smsClient, configuredDevices(), configuredQuota())
	pool.EnsureDevices()

	engine := otpService.NewEngine(otpRepo, pool, salt)
	reset := resetService.NewService(tokenRepo, accounts)

	changeCodes := phonechange.NewStore(phonechange.DefaultTTL)
	changeCodes.StartSweeping(time.Minute, make(chan struct{}))

	authCtl := authController.NewAuthController(accounts, engine, asyncLogger)
	otpCtl := otpController.NewOTPController(engine, asyncLogger)
	resetCtl := resetController.NewPasswordResetController(engine, reset, accounts, asyncLogger)
	profileCtl := profileController.NewProfileController(accounts, pool, changeCodes, asyncLogger, salt)

	// Health check / warm-up
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	/*=============================================================================
	| OTP Routes
	===============================================================================*/
	app.Post("/send-otp", otpCtl.SendOTP)
	app.Post("/verify-otp", otpCtl.VerifyOTP)

	/*=============================================================================
	| Signup & Login Routes
	===============================================================================*/
	app.Post("/signup/user", authCtl.SignupUser)
	app.Post("/signup/vendor", authCtl.SignupVendor)
	app.Post("/login/email", authCtl.LoginEmail)
	app.Post("/login/phone", authCtl.LoginPhone)

	/*=============================================================================
	| Password Reset Routes
	===============================================================================*/
	app.Post("/password-reset/request", resetCtl.Request)
	app.Post("/password-reset/verify", resetCtl.Verify)
	app.Post("/password-reset/complete", resetCtl.Complete)

	/*=============================================================================
	| Profile Routes
	===============================================================================*/
	profileGroup := app.Group("/profile")
	profileGroup.Post("/update_profile", profileCtl.UpdateProfile)
	profileGroup.Post("/send_otp_current", profileCtl.SendCurrentOTP)
	profileGroup.Post("/verify_current_otp", profileCtl.VerifyCurrentOTP)
	profileGroup.Post("/send_otp_new", profileCtl.SendNewOTP)
	profileGroup.Post("/verify_new_phone", profileCtl.VerifyNewPhone)
	profileGroup.Post("/update_password", profileCtl.UpdatePassword)
}

// configuredDevices reads the comma-separated sender identities, skipping
// blank entries.
func configuredDevices() []string {
	raw := strings.Split(os.Getenv("HTTPSMS_DEVICES"), ",")
	devices := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			devices = append(devices, p)
		}
	}
	if len(devices) == 0 {
		logger.Warning("No HTTPSMS_DEVICES configured; outbound SMS will fail")
	}
	return devices
}

func configuredQuota() int {
	if v := os.Getenv("HTTPSMS_DEVICE_MAX_PER_DAY"); v != "" {
		if quota, err := strconv.Atoi(v); err == nil && quota > 0 {
			return quota
		}
		logger.Warning("Invalid HTTPSMS_DEVICE_MAX_PER_DAY, using default")
	}
	return defaultDeviceQuota
}
