package scheduler

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/renewals/service"
)

// RegisterExpirySweep schedules the sweep on spec; an empty spec disables it.
func RegisterExpirySweep(c *cron.Cron, db *gorm.DB, spec string) (cron.EntryID, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		log.Println("[SWEEP] expiry sweep disabled")
		return 0, nil
	}
	return c.AddFunc(spec, func() {
		RunExpirySweep(db)
	})
}

func RunExpirySweep(db *gorm.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := service.SweepExpired(ctx, db, time.Now())
	if err != nil {
		log.Printf("[SWEEP ERROR] registrations: %v", err)
		return
	}
	log.Printf("[SWEEP] %d registrations marked expired (as of %s)", res.Expired, res.AsOf.Format("2006-01-02"))
}
