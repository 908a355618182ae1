package seeds

import (
	"context"
	"log"

	"gorm.io/gorm"

	"membership_backend/internals/configs"
	authService "membership_backend/internals/features/users/auth/service"
	adminSeeds "membership_backend/internals/seeds/users/auth"
)

// RunAllSeeds bootstraps admin accounts. Failures are logged; startup continues.
func RunAllSeeds(ctx context.Context, db *gorm.DB, cfg *configs.Config) {
	//* Bootstrap super admin
	if err := authService.SeedAdmin(ctx, db, cfg.AdminSeedEmail, cfg.AdminSeedPassword, cfg.AdminSeedName); err != nil {
		log.Printf("[ERROR] seed admin: %v", err)
	}

	//* Extra admins
	if cfg.AdminSeedFile != "" {
		if _, err := adminSeeds.SeedAdminsFromJSON(ctx, db, cfg.AdminSeedFile); err != nil {
			log.Printf("[ERROR] seed admins from %s: %v", cfg.AdminSeedFile, err)
		}
	}
}
