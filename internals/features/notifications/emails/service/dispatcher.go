package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	emailModel "membership_backend/internals/features/notifications/emails/model"
	authModel "membership_backend/internals/features/users/auth/model"
	helper "membership_backend/internals/helpers"
	"membership_backend/internals/metrics"
)

const resendPrefix = "[RESEND] "

type Notification struct {
	RegistrationID *uuid.UUID
	To             string
	Bcc            []string
	Type           string
	Subject        string
	HTML           string
}

// Dispatcher sends mail through Sender and records one EmailNotification per attempt.
type Dispatcher struct {
	DB           *gorm.DB
	Sender       Sender
	SupportEmail string

	limiter *rate.Limiter
	render  func(Confirmation) (string, error)
}

// NewDispatcher throttles outbound mail to perMinute messages with an equal burst.
func NewDispatcher(db *gorm.DB, sender Sender, perMinute int, supportEmail string) *Dispatcher {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Dispatcher{
		DB:           db,
		Sender:       sender,
		SupportEmail: supportEmail,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		render:       RenderConfirmation,
	}
}

// Dispatch returns the recorded row and the delivery error, if any.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) (*emailModel.EmailNotification, error) {
	sendErr := d.limiter.Wait(ctx)
	if sendErr == nil {
		sendErr = d.Sender.Send(ctx, Message{To: n.To, Bcc: n.Bcc, Subject: n.Subject, HTML: n.HTML})
	}

	return d.record(ctx, n, sendErr), sendErr
}

// record writes the attempt's row; a nil err means the message went out.
func (d *Dispatcher) record(ctx context.Context, n Notification, sendErr error) *emailModel.EmailNotification {
	row := &emailModel.EmailNotification{
		RegistrationID: n.RegistrationID,
		RecipientEmail: n.To,
		EmailType:      n.Type,
		Subject:        n.Subject,
		Body:           n.HTML,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		row.Status = emailModel.EmailStatusFailed
		row.ErrorMessage = &msg
		log.Printf("[ERROR] email %s to %s failed: %v", n.Type, n.To, sendErr)
	} else {
		now := time.Now().UTC()
		row.Status = emailModel.EmailStatusSent
		row.SentAt = &now
	}
	metrics.Emails.WithLabelValues(n.Type, row.Status).Inc()

	// the log row is written even when the caller's context is already done
	if err := d.DB.WithContext(context.WithoutCancel(ctx)).Create(row).Error; err != nil {
		log.Printf("[ERROR] email_notifications insert: %v", err)
	}
	return row
}

/* ===== registration ===== */

// SendRegistrationConfirmation mails the applicant with the support mailbox in Bcc.
func (d *Dispatcher) SendRegistrationConfirmation(ctx context.Context, registrationID uuid.UUID, c Confirmation) (*emailModel.EmailNotification, error) {
	n := Notification{
		RegistrationID: &registrationID,
		To:             c.Email,
		Type:           emailModel.EmailTypeRegistrationConfirmation,
		Subject:        c.Subject(),
	}
	html, err := d.render(c)
	if err != nil {
		err = fmt.Errorf("render confirmation: %w", err)
		return d.record(ctx, n, err), err
	}
	n.HTML = html
	if d.SupportEmail != "" && d.SupportEmail != c.Email {
		n.Bcc = []string{d.SupportEmail}
	}
	return d.Dispatch(ctx, n)
}

/* ===== password reset ===== */

func (d *Dispatcher) SendPasswordReset(ctx context.Context, admin *authModel.AdminUser, link string) error {
	name := helper.DerefStr(admin.FullName)
	if name == "" {
		name = admin.Username
	}
	n := Notification{
		To:      admin.Email,
		Type:    emailModel.EmailTypePasswordReset,
		Subject: "Admin Password Reset",
	}
	html, err := renderReset(name, link)
	if err != nil {
		err = fmt.Errorf("render reset: %w", err)
		d.record(ctx, n, err)
		return err
	}
	n.HTML = html
	_, err = d.Dispatch(ctx, n)
	return err
}

/* ===== resend ===== */

// Resend re-delivers a logged email with a [RESEND] subject and records a new row.
func (d *Dispatcher) Resend(ctx context.Context, id uuid.UUID) (*emailModel.EmailNotification, error) {
	var orig emailModel.EmailNotification
	if err := d.DB.WithContext(ctx).First(&orig, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFoundError("Email not found")
		}
		return nil, helper.PersistenceError("Failed to resend email", err)
	}
	return d.resend(ctx, &orig)
}

// ResendLatestForRegistration resends the most recent email of a registration.
func (d *Dispatcher) ResendLatestForRegistration(ctx context.Context, registrationID uuid.UUID) (*emailModel.EmailNotification, error) {
	var orig emailModel.EmailNotification
	err := d.DB.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at DESC").
		First(&orig).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFoundError("No email found for this registration")
		}
		return nil, helper.PersistenceError("Failed to resend email", err)
	}
	return d.resend(ctx, &orig)
}

func (d *Dispatcher) resend(ctx context.Context, orig *emailModel.EmailNotification) (*emailModel.EmailNotification, error) {
	row, err := d.Dispatch(ctx, Notification{
		RegistrationID: orig.RegistrationID,
		To:             orig.RecipientEmail,
		Type:           emailModel.EmailTypeResend,
		Subject:        resendPrefix + strings.TrimPrefix(orig.Subject, resendPrefix),
		HTML:           orig.Body,
	})
	if err != nil {
		return row, helper.DeliveryError("Failed to resend email", err)
	}
	return row, nil
}
