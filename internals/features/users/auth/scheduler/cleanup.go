package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	authRepo "membership_backend/internals/features/users/auth/repository"
)

// RegisterBlacklistCleanup drops revoked tokens past their expiry every hour.
func RegisterBlacklistCleanup(c *cron.Cron, db *gorm.DB) (cron.EntryID, error) {
	return c.AddFunc("@hourly", func() {
		RunBlacklistCleanup(db)
	})
}

func RunBlacklistCleanup(db *gorm.DB) {
	n, err := authRepo.CleanupExpiredBlacklist(db, time.Now())
	if err != nil {
		log.Printf("[CLEANUP ERROR] token_blacklist: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[CLEANUP] %d expired revoked tokens removed", n)
	}
}
