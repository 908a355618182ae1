package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	regModel "membership_backend/internals/features/membership/registrations/model"
	"membership_backend/internals/features/reports/renewals/dto"
	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
	helper "membership_backend/internals/helpers"
	"membership_backend/internals/metrics"
)

const (
	StatusDue     = "due"
	StatusOverdue = "overdue"

	DefaultWindowDays = 30
	MaxWindowDays     = 365
)

type ListFilter struct {
	Status     string
	WindowDays int
	Q          string
	Paging     helper.Paging
}

// ListRenewals returns active registrations expiring inside the window (due) or already past expiry (overdue).
func ListRenewals(ctx context.Context, db *gorm.DB, f ListFilter, now time.Time) ([]dto.RenewalItem, int64, error) {
	today := helper.DateOnly(now)

	tx := db.WithContext(ctx).Model(&regModel.Registration{}).
		Joins("JOIN users u ON u.id = registrations.user_id").
		Where("registrations.membership_status = ?", regModel.MembershipStatusActive)

	if f.Status == StatusOverdue {
		tx = tx.Where("registrations.membership_expiry < ?", today)
	} else {
		tx = tx.Where("registrations.membership_expiry >= ? AND registrations.membership_expiry <= ?",
			today, today.AddDate(0, 0, f.WindowDays))
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := helper.LikeContains(s)
		tx = tx.Where(`LOWER(registrations.membership_id) LIKE ? OR LOWER(u.email) LIKE ?
			OR LOWER(u.first_name) LIKE ? OR LOWER(u.last_name) LIKE ?`, like, like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []regModel.Registration
	if err := tx.Preload("User").Preload("MembershipType").
		Order("registrations.membership_expiry ASC").
		Limit(f.Paging.PageSize).Offset(f.Paging.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]dto.RenewalItem, 0, len(rows))
	for i := range rows {
		out = append(out, toItem(&rows[i], today))
	}
	return out, total, nil
}

func toItem(r *regModel.Registration, today time.Time) dto.RenewalItem {
	item := dto.RenewalItem{
		ID:               r.ID,
		MembershipID:     r.MembershipID,
		MembershipStatus: r.MembershipStatus,
		MembershipExpiry: helper.FormatDate(r.MembershipExpiry),
		DaysRemaining:    int(helper.DateOnly(r.MembershipExpiry).Sub(today).Hours() / 24),
		PaymentStatus:    r.PaymentStatus,
		PaymentAmount:    r.PaymentAmount,
		CreatedAt:        r.CreatedAt,
	}
	if r.User != nil {
		item.FirstName = r.User.FirstName
		item.MiddleName = r.User.MiddleName
		item.LastName = r.User.LastName
		item.Email = r.User.Email
		item.PhoneNumber = r.User.PhoneNumber
	}
	if r.MembershipType != nil {
		item.MembershipType = r.MembershipType.Name
	}
	return item
}

// SweepExpired flips active registrations past their expiry to expired and records one audit row.
func SweepExpired(ctx context.Context, db *gorm.DB, now time.Time) (*dto.SweepResult, error) {
	today := helper.DateOnly(now)
	res := db.WithContext(ctx).Model(&regModel.Registration{}).
		Where("membership_status = ? AND membership_expiry < ?", regModel.MembershipStatusActive, today).
		Updates(map[string]any{
			"membership_status": regModel.MembershipStatusExpired,
			"updated_at":        now.UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	out := &dto.SweepResult{Expired: res.RowsAffected, AsOf: today}
	metrics.ExpiredBySweep.Add(float64(res.RowsAffected))
	auditService.Record(db, auditService.Entry{
		Action:     auditModel.ActionExpirySweep,
		EntityType: "registration",
		NewValues:  out,
	})
	return out, nil
}
