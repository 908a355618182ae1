package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	regModel "membership_backend/internals/features/membership/registrations/model"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	"membership_backend/internals/features/reports/stats/dto"
	helper "membership_backend/internals/helpers"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"

	DefaultTrendDays = 30
	MaxTrendDays     = 180
)

// bounds are the window starts used by every summary query.
type bounds struct {
	today, week, month time.Time
}

func boundsAt(now time.Time) bounds {
	now = now.UTC()
	return bounds{
		today: helper.DateOnly(now),
		week:  now.AddDate(0, 0, -7),
		month: now.AddDate(0, 0, -30),
	}
}

// PeriodStart maps a period name to its window start; nil means all time.
func PeriodStart(period string, now time.Time) *time.Time {
	b := boundsAt(now)
	switch period {
	case PeriodWeek:
		return &b.week
	case PeriodMonth:
		return &b.month
	}
	return nil
}

func Summary(ctx context.Context, db *gorm.DB, now time.Time) (*dto.Summary, error) {
	b := boundsAt(now)
	out := &dto.Summary{}
	q := db.WithContext(ctx)

	if err := q.Raw(`
		SELECT COUNT(*) FILTER (WHERE created_at >= ?) AS today,
		       COUNT(*) FILTER (WHERE created_at >= ?) AS week,
		       COUNT(*) FILTER (WHERE created_at >= ?) AS month,
		       COUNT(*) AS total
		FROM users`, b.today, b.week, b.month).Scan(&out.Users).Error; err != nil {
		return nil, err
	}

	if err := q.Raw(`
		SELECT COUNT(*) FILTER (WHERE created_at >= ?) AS today,
		       COUNT(*) FILTER (WHERE created_at >= ?) AS week,
		       COUNT(*) FILTER (WHERE created_at >= ?) AS month,
		       COUNT(*) AS total
		FROM registrations`, b.today, b.week, b.month).Scan(&out.Registrations).Error; err != nil {
		return nil, err
	}

	if err := q.Raw(`
		SELECT COALESCE(SUM(payment_amount) FILTER (WHERE created_at >= ?), 0) AS today,
		       COALESCE(SUM(payment_amount) FILTER (WHERE created_at >= ?), 0) AS week,
		       COALESCE(SUM(payment_amount) FILTER (WHERE created_at >= ?), 0) AS month,
		       COALESCE(SUM(payment_amount), 0) AS total
		FROM registrations
		WHERE payment_status IN ?`, b.today, b.week, b.month, paymentModel.PaidStatuses).
		Scan(&out.Revenue).Error; err != nil {
		return nil, err
	}

	var active struct {
		ActiveMembers int64 `gorm:"column:active_members"`
		dto.RenewalCounts
	}
	if err := q.Raw(`
		SELECT COUNT(*) FILTER (WHERE membership_expiry >= ?) AS active_members,
		       COUNT(*) FILTER (WHERE membership_expiry BETWEEN ? AND ?) AS due7,
		       COUNT(*) FILTER (WHERE membership_expiry BETWEEN ? AND ?) AS due30,
		       COUNT(*) FILTER (WHERE membership_expiry < ?) AS overdue
		FROM registrations
		WHERE membership_status = ?`,
		b.today,
		b.today, b.today.AddDate(0, 0, 7),
		b.today, b.today.AddDate(0, 0, 30),
		b.today,
		regModel.MembershipStatusActive).Scan(&active).Error; err != nil {
		return nil, err
	}
	out.ActiveMembers = active.ActiveMembers
	out.Renewals = active.RenewalCounts
	return out, nil
}

// ByMembershipType lists every tier with its registrations and paid revenue since the period start.
func ByMembershipType(ctx context.Context, db *gorm.DB, period string, now time.Time) ([]dto.MembershipTypeStat, error) {
	join := "r.membership_type_id = mt.id"
	args := []any{paymentModel.PaidStatuses}
	if since := PeriodStart(period, now); since != nil {
		join += " AND r.created_at >= ?"
		args = append(args, *since)
	}

	rows := []dto.MembershipTypeStat{}
	err := db.WithContext(ctx).Raw(`
		SELECT mt.id AS membership_type_id, mt.name, mt.slug,
		       COUNT(r.id) AS registrations,
		       COALESCE(SUM(r.payment_amount) FILTER (WHERE r.payment_status IN ?), 0) AS revenue
		FROM membership_types mt
		LEFT JOIN registrations r ON `+join+`
		GROUP BY mt.id, mt.name, mt.slug
		ORDER BY registrations DESC, mt.name ASC`, args...).Scan(&rows).Error
	return rows, err
}

// Trend returns one point per day for the last `days` days, oldest first, zero-filled.
func Trend(ctx context.Context, db *gorm.DB, days int, now time.Time) ([]dto.TrendPoint, error) {
	start := helper.DateOnly(now.UTC()).AddDate(0, 0, -(days - 1))

	var rows []struct {
		Day           time.Time `gorm:"column:day"`
		Registrations int64     `gorm:"column:registrations"`
		Revenue       float64   `gorm:"column:revenue"`
	}
	if err := db.WithContext(ctx).Raw(`
		SELECT DATE(created_at) AS day,
		       COUNT(*) AS registrations,
		       COALESCE(SUM(payment_amount) FILTER (WHERE payment_status IN ?), 0) AS revenue
		FROM registrations
		WHERE created_at >= ?
		GROUP BY DATE(created_at)
		ORDER BY day ASC`, paymentModel.PaidStatuses, start).Scan(&rows).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string]dto.TrendPoint, len(rows))
	for _, r := range rows {
		d := helper.FormatDate(r.Day)
		byDay[d] = dto.TrendPoint{Date: d, Registrations: r.Registrations, Revenue: r.Revenue}
	}
	out := make([]dto.TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		d := helper.FormatDate(start.AddDate(0, 0, i))
		p, ok := byDay[d]
		if !ok {
			p = dto.TrendPoint{Date: d}
		}
		out = append(out, p)
	}
	return out, nil
}
