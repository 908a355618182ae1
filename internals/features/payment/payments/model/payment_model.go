package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Constants ===================== */

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusAbandoned = "abandoned"
	PaymentStatusReversed  = "reversed"
)

const (
	GatewayPaystack = "paystack"
	GatewayManual   = "manual"
	DefaultCurrency = "GHS"
)

// PaidStatuses count towards revenue.
var PaidStatuses = []string{PaymentStatusSuccess, PaymentStatusCompleted}

func IsValidStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSuccess, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusAbandoned, PaymentStatusReversed:
		return true
	}
	return false
}

/* ===================== Model ===================== */

// Payment is keyed by its gateway reference.
type Payment struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Reference     string         `gorm:"column:reference;type:varchar(120);not null;uniqueIndex" json:"reference"`
	Gateway       string         `gorm:"column:gateway;type:varchar(50);not null;default:'paystack'" json:"gateway"`
	Status        string         `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	Amount        float64        `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency      string         `gorm:"column:currency;type:varchar(10);not null;default:'GHS'" json:"currency"`
	Channel       *string        `gorm:"column:channel;type:varchar(50)" json:"channel,omitempty"`
	PaidAt        *time.Time     `gorm:"column:paid_at" json:"paid_at,omitempty"`
	Metadata      datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CustomerEmail *string        `gorm:"column:customer_email;type:varchar(255);index" json:"customer_email,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if len(p.Metadata) == 0 {
		p.Metadata = datatypes.JSON("{}")
	}
	return nil
}
