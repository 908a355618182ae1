package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	regModel "membership_backend/internals/features/membership/registrations/model"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	userService "membership_backend/internals/features/users/user/service"
	userModel "membership_backend/internals/features/users/user/model"
	helper "membership_backend/internals/helpers"
)

const DefaultBatchSize = 500

var (
	UserHeader = []string{
		"id", "first_name", "middle_name", "last_name", "email", "phone_number", "alternative_phone",
		"date_of_birth", "gender", "nationality", "id_type", "id_number", "street_address", "city",
		"region", "digital_address", "created_at", "membership_status", "membership_expiry",
	}
	PaymentHeader = []string{
		"id", "reference", "gateway", "status", "amount", "currency", "channel", "paid_at",
		"customer_email", "created_at", "membership_id",
	}
)

// DateRange bounds an export; nil ends are open. End covers the whole day.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func ParseRange(start, end string) (DateRange, *helper.AppError) {
	var r DateRange
	if start != "" {
		t, err := helper.ParseDate(start)
		if err != nil {
			return r, helper.ValidationError("start must be a date in YYYY-MM-DD format")
		}
		r.Start = &t
	}
	if end != "" {
		t, err := helper.ParseDate(end)
		if err != nil {
			return r, helper.ValidationError("end must be a date in YYYY-MM-DD format")
		}
		eod := helper.EndOfDay(t)
		r.End = &eod
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, helper.ValidationError("end must not be before start")
	}
	return r, nil
}

func (r DateRange) apply(tx *gorm.DB, column string) *gorm.DB {
	if r.Start != nil {
		tx = tx.Where(column+" >= ?", *r.Start)
	}
	if r.End != nil {
		tx = tx.Where(column+" <= ?", *r.End)
	}
	return tx
}

// Filename is "<entity>-YYYY-MM-DD.csv".
func Filename(entity string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", entity, helper.FormatDate(now))
}

/* ===================== Export ===================== */

type fetchFunc func(offset int) ([][]string, error)

// Export is a CSV export whose first batch has already been read, so a failing
// query surfaces before any bytes are written.
type Export struct {
	header []string
	first  [][]string
	fetch  fetchFunc
	batch  int
}

func open(header []string, batchSize int, fetch fetchFunc) (*Export, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	e := &Export{header: header, fetch: fetch, batch: batchSize}
	first, err := fetch(0)
	if err != nil {
		return nil, err
	}
	e.first = first
	return e, nil
}

// WriteTo writes the header, the preloaded batch, then the remaining batches.
func (e *Export) WriteTo(w io.Writer) error {
	cw := helper.NewCSVWriter(w)
	if err := cw.Write(e.header); err != nil {
		return err
	}
	rows := e.first
	for offset := 0; ; {
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		if err := cw.Flush(); err != nil {
			return err
		}
		if len(rows) < e.batch {
			return nil
		}
		offset += e.batch
		next, err := e.fetch(offset)
		if err != nil {
			return err
		}
		rows = next
	}
}

/* ===================== Users ===================== */

// OpenUsersExport prepares members oldest first, each with their latest membership status and expiry.
func OpenUsersExport(ctx context.Context, db *gorm.DB, r DateRange, batchSize int) (*Export, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return open(UserHeader, batchSize, func(offset int) ([][]string, error) {
		var users []userModel.User
		q := r.apply(db.WithContext(ctx).Model(&userModel.User{}), "created_at")
		if err := q.Order("created_at ASC").Order("id ASC").
			Limit(batchSize).Offset(offset).Find(&users).Error; err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, nil
		}

		ids := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		latest, err := userService.LatestRegistrations(ctx, db, ids)
		if err != nil {
			return nil, err
		}
		out := make([][]string, 0, len(users))
		for i := range users {
			out = append(out, userRow(&users[i], latest[users[i].ID]))
		}
		return out, nil
	})
}

func WriteUsersCSV(ctx context.Context, db *gorm.DB, w io.Writer, r DateRange, batchSize int) error {
	e, err := OpenUsersExport(ctx, db, r, batchSize)
	if err != nil {
		return err
	}
	return e.WriteTo(w)
}

func userRow(u *userModel.User, latest *regModel.Registration) []string {
	status, expiry := "", ""
	if latest != nil {
		status = latest.MembershipStatus
		expiry = helper.FormatDate(latest.MembershipExpiry)
	}
	return []string{
		u.ID.String(), u.FirstName, helper.DerefStr(u.MiddleName), u.LastName, u.Email,
		u.PhoneNumber, helper.DerefStr(u.AlternativePhone), helper.FormatDate(u.DateOfBirth),
		u.Gender, u.Nationality, u.IDType, u.IDNumber, u.StreetAddress, u.City, u.Region,
		helper.DerefStr(u.DigitalAddress), u.CreatedAt.UTC().Format(time.RFC3339),
		status, expiry,
	}
}

/* ===================== Payments ===================== */

// OpenPaymentsExport prepares payments newest first by COALESCE(paid_at, created_at).
func OpenPaymentsExport(ctx context.Context, db *gorm.DB, r DateRange, batchSize int) (*Export, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	const effective = "COALESCE(paid_at, created_at)"
	return open(PaymentHeader, batchSize, func(offset int) ([][]string, error) {
		var rows []paymentModel.Payment
		q := r.apply(db.WithContext(ctx).Model(&paymentModel.Payment{}), effective)
		if err := q.Order(effective + " DESC").Order("id ASC").
			Limit(batchSize).Offset(offset).Find(&rows).Error; err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}

		mids, err := membershipIDsByPayment(ctx, db, rows)
		if err != nil {
			return nil, err
		}
		out := make([][]string, 0, len(rows))
		for i := range rows {
			out = append(out, paymentRow(&rows[i], mids[rows[i].ID]))
		}
		return out, nil
	})
}

func WritePaymentsCSV(ctx context.Context, db *gorm.DB, w io.Writer, r DateRange, batchSize int) error {
	e, err := OpenPaymentsExport(ctx, db, r, batchSize)
	if err != nil {
		return err
	}
	return e.WriteTo(w)
}

func membershipIDsByPayment(ctx context.Context, db *gorm.DB, rows []paymentModel.Payment) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	var regs []regModel.Registration
	if err := db.WithContext(ctx).Select("payment_id", "membership_id").
		Where("payment_id IN ?", ids).Order("created_at ASC").Find(&regs).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(regs))
	for _, r := range regs {
		if _, ok := out[r.PaymentID]; !ok {
			out[r.PaymentID] = r.MembershipID
		}
	}
	return out, nil
}

func paymentRow(p *paymentModel.Payment, membershipID string) []string {
	paidAt := ""
	if p.PaidAt != nil {
		paidAt = p.PaidAt.UTC().Format(time.RFC3339)
	}
	return []string{
		p.ID.String(), p.Reference, p.Gateway, p.Status,
		strconv.FormatFloat(p.Amount, 'f', 2, 64), p.Currency, helper.DerefStr(p.Channel),
		paidAt, helper.DerefStr(p.CustomerEmail), p.CreatedAt.UTC().Format(time.RFC3339),
		membershipID,
	}
}
