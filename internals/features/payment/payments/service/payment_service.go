package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	regModel "membership_backend/internals/features/membership/registrations/model"
	"membership_backend/internals/features/payment/payments/dto"
	"membership_backend/internals/features/payment/payments/model"
	helper "membership_backend/internals/helpers"
)

type ListFilter struct {
	Q      string
	Status string
	Paging helper.Paging
}

func ListPayments(ctx context.Context, db *gorm.DB, f ListFilter) ([]model.Payment, int64, error) {
	tx := db.WithContext(ctx).Model(&model.Payment{})
	if s := strings.TrimSpace(f.Q); s != "" {
		like := helper.LikeContains(s)
		tx = tx.Where("LOWER(reference) LIKE ? OR LOWER(COALESCE(customer_email, '')) LIKE ?", like, like)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.Payment
	err := tx.Order("created_at DESC").Limit(f.Paging.PageSize).Offset(f.Paging.Offset).Find(&rows).Error
	return rows, total, err
}

// GetPayment returns the payment and the registration it paid for, if any.
func GetPayment(ctx context.Context, db *gorm.DB, id uuid.UUID) (*dto.PaymentDetail, error) {
	var p model.Payment
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFoundError("Payment not found")
		}
		return nil, helper.PersistenceError("Failed to get payment", err)
	}

	var regs []regModel.Registration
	if err := db.WithContext(ctx).Preload("User").Preload("MembershipType").
		Where("payment_id = ?", p.ID).Order("created_at ASC").Limit(1).
		Find(&regs).Error; err != nil {
		return nil, helper.PersistenceError("Failed to get payment", err)
	}

	out := &dto.PaymentDetail{Payment: dto.ToPaymentDTO(&p)}
	if len(regs) > 0 {
		out.Registration = dto.ToPaymentRegistration(&regs[0])
	}
	return out, nil
}
