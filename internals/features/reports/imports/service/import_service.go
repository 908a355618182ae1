package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	paymentModel "membership_backend/internals/features/payment/payments/model"
	userDTO "membership_backend/internals/features/users/user/dto"
	userModel "membership_backend/internals/features/users/user/model"
	helper "membership_backend/internals/helpers"
)

const (
	DefaultMaxRows   = 20000
	DefaultBatchSize = 500
)

var (
	UserColumns = []string{
		"first_name", "last_name", "email", "phone_number", "date_of_birth", "gender",
		"id_type", "id_number", "street_address", "city", "region",
		"emergency_contact_name", "emergency_contact_phone",
	}
	PaymentColumns = []string{"reference", "status", "amount", "currency", "customer_email"}
)

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Result struct {
	DryRun    bool       `json:"dryRun"`
	Processed int        `json:"processed"`
	Created   int        `json:"created"`
	Updated   int        `json:"updated"`
	Errors    []RowError `json:"errors"`
}

type Importer struct {
	DB        *gorm.DB
	MaxRows   int
	BatchSize int
}

func NewImporter(db *gorm.DB, maxRows, batchSize int) *Importer {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{DB: db, MaxRows: maxRows, BatchSize: batchSize}
}

// prepared is one valid row ready to write, keyed for create/update classification.
type prepared[T any] struct {
	line int
	key  string
	row  T
}

// entity describes one importable table.
type entity[T any] struct {
	required []string
	parse    func(rec map[string]string) (T, string, error)
	existing func(tx *gorm.DB, keys []string) (map[string]bool, error)
	upsert   func(tx *gorm.DB, rows []T) error
}

func (im *Importer) ImportUsers(ctx context.Context, r io.Reader, dryRun bool) (*Result, error) {
	return run(ctx, im, r, dryRun, entity[*userModel.User]{
		required: UserColumns,
		parse:    parseUser,
		existing: existingKeys(&userModel.User{}, "email"),
		upsert:   upsertUsers,
	})
}

func (im *Importer) ImportPayments(ctx context.Context, r io.Reader, dryRun bool) (*Result, error) {
	return run(ctx, im, r, dryRun, entity[*paymentModel.Payment]{
		required: PaymentColumns,
		parse:    parsePayment,
		existing: existingKeys(&paymentModel.Payment{}, "reference"),
		upsert:   upsertPayments,
	})
}

func run[T any](ctx context.Context, im *Importer, r io.Reader, dryRun bool, s entity[T]) (*Result, error) {
	table, err := helper.ReadCSVTable(r, im.MaxRows)
	if err != nil {
		return nil, helper.ValidationError("Invalid CSV file: " + err.Error())
	}
	if missing := table.MissingColumns(s.required); len(missing) > 0 {
		return nil, helper.ValidationError("Missing required columns: " + strings.Join(missing, ", "))
	}

	res := &Result{DryRun: dryRun, Processed: len(table.Rows), Errors: []RowError{}}
	var valid []prepared[T]
	for i, raw := range table.Rows {
		row, key, err := s.parse(table.Record(raw))
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: i + 2, Error: err.Error()})
			continue
		}
		valid = append(valid, prepared[T]{line: i + 2, key: key, row: row})
	}

	// keys written by an earlier batch of this file count as existing
	seen := map[string]bool{}
	for start := 0; start < len(valid); start += im.BatchSize {
		end := start + im.BatchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]

		var created, updated int
		apply := func(tx *gorm.DB) error {
			created, updated = 0, 0
			keys := make([]string, 0, len(batch))
			for _, p := range batch {
				keys = append(keys, p.key)
			}
			found, err := s.existing(tx, keys)
			if err != nil {
				return err
			}
			local := map[string]bool{}
			for _, p := range batch {
				if found[p.key] || seen[p.key] || local[p.key] {
					updated++
				} else {
					created++
				}
				local[p.key] = true
			}
			if dryRun {
				return nil
			}
			rows := make([]T, 0, len(batch))
			for _, p := range batch {
				rows = append(rows, p.row)
			}
			return s.upsert(tx, rows)
		}

		if dryRun {
			err = apply(im.DB.WithContext(ctx))
		} else {
			err = im.DB.WithContext(ctx).Transaction(apply)
		}
		if err != nil {
			log.Printf("[ERROR] import batch at line %d: %v", batch[0].line, err)
			for _, p := range batch {
				res.Errors = append(res.Errors, RowError{Row: p.line, Error: "batch failed: could not be saved"})
			}
			continue
		}
		res.Created += created
		res.Updated += updated
		for _, p := range batch {
			seen[p.key] = true
		}
	}
	return res, nil
}

func existingKeys(model any, column string) func(tx *gorm.DB, keys []string) (map[string]bool, error) {
	return func(tx *gorm.DB, keys []string) (map[string]bool, error) {
		var found []string
		if err := tx.Model(model).Where(column+" IN ?", keys).Pluck(column, &found).Error; err != nil {
			return nil, err
		}
		out := make(map[string]bool, len(found))
		for _, k := range found {
			out[k] = true
		}
		return out, nil
	}
}

/* ===================== Users ===================== */

func parseUser(rec map[string]string) (*userModel.User, string, error) {
	req := userDTO.CreateUserRequest{
		FirstName:        rec["first_name"],
		MiddleName:       rec["middle_name"],
		LastName:         rec["last_name"],
		Email:            rec["email"],
		PhoneNumber:      rec["phone_number"],
		AlternativePhone: rec["alternative_phone"],
		DateOfBirth:      rec["date_of_birth"],
		Gender:           strings.ToLower(rec["gender"]),
		Nationality:      rec["nationality"],
		IDType:           strings.ToLower(rec["id_type"]),
		IDNumber:         rec["id_number"],
		StreetAddress:    rec["street_address"],
		City:             rec["city"],
		Region:           rec["region"],
		DigitalAddress:   rec["digital_address"],
		EmergencyContact: userDTO.EmergencyContactRequest{
			Name:         rec["emergency_contact_name"],
			Relationship: rec["emergency_contact_relationship"],
			Phone:        rec["emergency_contact_phone"],
		},
	}
	req.Normalize()
	if ae := helper.ValidateStruct(req); ae != nil {
		return nil, "", fmt.Errorf("%s", ae.Message)
	}
	return req.ToModel(), req.Email, nil
}

var userUpdateColumns = []string{
	"first_name", "middle_name", "last_name", "phone_number", "alternative_phone", "date_of_birth",
	"gender", "nationality", "id_type", "id_number", "street_address", "city", "region",
	"digital_address", "emergency_contact", "updated_at",
}

func upsertUsers(tx *gorm.DB, rows []*userModel.User) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns(userUpdateColumns),
	}).Create(dedupe(rows, func(u *userModel.User) string { return u.Email })).Error
}

/* ===================== Payments ===================== */

func parsePayment(rec map[string]string) (*paymentModel.Payment, string, error) {
	ref := rec["reference"]
	if ref == "" {
		return nil, "", fmt.Errorf("reference is required")
	}
	status := strings.ToLower(rec["status"])
	if !paymentModel.IsValidStatus(status) {
		return nil, "", fmt.Errorf("status must be one of pending, success, completed, failed, abandoned, reversed")
	}
	amount, err := strconv.ParseFloat(rec["amount"], 64)
	if err != nil || amount < 0 {
		return nil, "", fmt.Errorf("amount must be a non-negative number")
	}
	currency := strings.ToUpper(rec["currency"])
	if currency == "" {
		currency = paymentModel.DefaultCurrency
	}
	email := strings.ToLower(rec["customer_email"])
	if helper.Validator().Var(email, "required,email") != nil {
		return nil, "", fmt.Errorf("customer_email must be a valid email address")
	}
	gateway := rec["gateway"]
	if gateway == "" {
		gateway = paymentModel.GatewayManual
	}

	p := &paymentModel.Payment{
		Reference:     ref,
		Gateway:       gateway,
		Status:        status,
		Amount:        amount,
		Currency:      currency,
		Channel:       helper.StrPtr(rec["channel"]),
		CustomerEmail: &email,
		Metadata:      datatypes.JSON(`{"import":true}`),
	}
	if raw := rec["paid_at"]; raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return nil, "", fmt.Errorf("paid_at must be an ISO-8601 timestamp or YYYY-MM-DD")
		}
		p.PaidAt = &t
	}
	return p, ref, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t, nil
	}
	return helper.ParseDate(s)
}

var paymentUpdateColumns = []string{
	"status", "amount", "currency", "channel", "paid_at", "customer_email", "updated_at",
}

func upsertPayments(tx *gorm.DB, rows []*paymentModel.Payment) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoUpdates: clause.AssignmentColumns(paymentUpdateColumns),
	}).Create(dedupe(rows, func(p *paymentModel.Payment) string { return p.Reference })).Error
}

// dedupe keeps the last row per key; one INSERT cannot touch the same conflict key twice.
func dedupe[T any](rows []T, key func(T) string) []T {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[key(r)] = i
	}
	out := make([]T, 0, len(last))
	for i, r := range rows {
		if last[key(r)] == i {
			out = append(out, r)
		}
	}
	return out
}
