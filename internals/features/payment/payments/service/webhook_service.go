package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	regModel "membership_backend/internals/features/membership/registrations/model"
	"membership_backend/internals/features/payment/payments/dto"
	"membership_backend/internals/features/payment/payments/model"
	helper "membership_backend/internals/helpers"
)

const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

// Webhook results, used as the metrics label.
const (
	ResultProcessed = "processed"
	ResultIgnored   = "ignored"
	ResultRejected  = "rejected"
	ResultError     = "error"
)

var ErrBadSignature = errors.New("invalid webhook signature")

// Signature is the hex HMAC-SHA512 of body under secret, as Paystack sends it.
func Signature(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	want := Signature(secret, body)
	got := strings.ToLower(strings.TrimSpace(signature))
	return hmac.Equal([]byte(want), []byte(got))
}

type WebhookService struct {
	DB     *gorm.DB
	Secret string
	now    func() time.Time
}

func NewWebhookService(db *gorm.DB, secret string) *WebhookService {
	return &WebhookService{DB: db, Secret: secret, now: time.Now}
}

// Handle verifies and applies one Paystack delivery. It returns the event name and a metrics result.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature string) (string, string, error) {
	if !VerifySignature(s.Secret, body, signature) {
		return "", ResultRejected, ErrBadSignature
	}

	var ev dto.PaystackEvent
	if err := sonic.Unmarshal(body, &ev); err != nil {
		return "", ResultRejected, helper.ValidationError("Invalid webhook payload")
	}

	var status string
	switch ev.Event {
	case EventChargeSuccess:
		status = model.PaymentStatusSuccess
	case EventChargeFailed:
		status = model.PaymentStatusFailed
	default:
		return ev.Event, ResultIgnored, nil
	}
	ref := strings.TrimSpace(ev.Data.Reference)
	if ref == "" {
		return ev.Event, ResultRejected, helper.ValidationError("Missing payment reference")
	}

	if err := s.apply(ctx, ref, status, ev.Data); err != nil {
		log.Printf("[ERROR] webhook %s ref=%s: %v", ev.Event, ref, err)
		return ev.Event, ResultError, helper.PersistenceError("Failed to process webhook", err)
	}
	log.Printf("[INFO] webhook %s ref=%s status=%s", ev.Event, ref, status)
	return ev.Event, ResultProcessed, nil
}

func (s *WebhookService) apply(ctx context.Context, ref, status string, d dto.PaystackData) error {
	var paidAt *time.Time
	if status == model.PaymentStatusSuccess {
		t := s.now().UTC()
		if raw := d.PaidAtValue(); raw != "" {
			if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
				t = parsed.UTC()
			}
		}
		paidAt = &t
	}

	currency := strings.ToUpper(strings.TrimSpace(d.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}
	meta := datatypes.JSON("{}")
	if m := strings.TrimSpace(string(d.Metadata)); strings.HasPrefix(m, "{") {
		meta = datatypes.JSON(m)
	}
	row := &model.Payment{
		Reference:     ref,
		Gateway:       model.GatewayPaystack,
		Status:        status,
		Amount:        float64(d.Amount) / 100,
		Currency:      currency,
		Channel:       helper.StrPtr(strings.TrimSpace(d.Channel)),
		PaidAt:        paidAt,
		Metadata:      meta,
		CustomerEmail: helper.StrPtr(strings.ToLower(strings.TrimSpace(d.Customer.Email))),
	}

	// an existing row keeps its amount and metadata
	set := map[string]any{"status": status, "updated_at": s.now().UTC()}
	if paidAt != nil {
		set["paid_at"] = *paidAt
	}
	if row.Channel != nil {
		set["channel"] = *row.Channel
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoUpdates: clause.Assignments(set),
		}).Create(row).Error; err != nil {
			return err
		}
		var p model.Payment
		if err := tx.Where("reference = ?", ref).First(&p).Error; err != nil {
			return err
		}
		return tx.Model(&regModel.Registration{}).
			Where("payment_id = ?", p.ID).
			Updates(map[string]any{"payment_status": status, "updated_at": s.now().UTC()}).Error
	})
}
