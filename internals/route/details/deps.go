package details

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"membership_backend/internals/configs"
	regService "membership_backend/internals/features/membership/registrations/service"
	emailService "membership_backend/internals/features/notifications/emails/service"
	paymentService "membership_backend/internals/features/payment/payments/service"
	importService "membership_backend/internals/features/reports/imports/service"
	authService "membership_backend/internals/features/users/auth/service"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth"
)

// Deps is everything the route tree needs, built once in main.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client // nil when REDIS_ADDR is unset
	Config *configs.Config

	Guard  *auth.Guard
	Auth   *authService.AuthService
	Limits middlewares.RateLimits

	Dispatcher    *emailService.Dispatcher
	Registrations *regService.RegistrationService
	Webhook       *paymentService.WebhookService
	Importer      *importService.Importer
}
