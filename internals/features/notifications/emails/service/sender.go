package service

import (
	"context"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"

	"membership_backend/internals/configs"
)

type Message struct {
	To      string
	Bcc     []string
	Subject string
	HTML    string
}

// Sender delivers one message. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

/* ===== SMTP ===== */

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Secure   bool
	From     string
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return fmt.Errorf("bcc address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.Secure || s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}

/* ===== Log only ===== */

// LogSender prints messages instead of delivering them. Used when EMAIL_HOST is unset.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("[MAIL] to=%s bcc=%v subject=%q (%d bytes, not delivered)", msg.To, msg.Bcc, msg.Subject, len(msg.HTML))
	return nil
}

func NewSender(cfg *configs.Config) Sender {
	if cfg.EmailHost == "" {
		log.Println("⚠️ EMAIL_HOST not set, emails are logged only")
		return LogSender{}
	}
	from := cfg.EmailFrom
	if from == "" {
		from = cfg.EmailUser
	}
	return NewSMTPSender(SMTPConfig{
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPassword,
		Secure:   cfg.EmailSecure,
		From:     from,
	})
}
