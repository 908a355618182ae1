package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"membership_backend/internals/features/membership/registrations/dto"
	regModel "membership_backend/internals/features/membership/registrations/model"
	helper "membership_backend/internals/helpers"
)

type ListFilter struct {
	Q      string
	Status string
	Paging helper.Paging
}

// ListRegistrations returns a page of registrations, newest first.
func ListRegistrations(ctx context.Context, db *gorm.DB, f ListFilter) ([]regModel.Registration, int64, error) {
	q := db.WithContext(ctx).Model(&regModel.Registration{}).
		Joins("JOIN users u ON u.id = registrations.user_id")

	if s := strings.TrimSpace(f.Q); s != "" {
		like := helper.LikeContains(s)
		q = q.Where(`LOWER(registrations.membership_id) LIKE ? OR LOWER(u.email) LIKE ?
			OR LOWER(u.first_name) LIKE ? OR LOWER(u.last_name) LIKE ?`, like, like, like, like)
	}
	if f.Status != "" {
		q = q.Where("registrations.membership_status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []regModel.Registration
	err := q.Preload("User").Preload("MembershipType").Preload("Document").
		Order("registrations.created_at DESC").
		Limit(f.Paging.PageSize).Offset(f.Paging.Offset).
		Find(&rows).Error
	return rows, total, err
}

func GetRegistration(ctx context.Context, db *gorm.DB, id uuid.UUID) (*regModel.Registration, error) {
	var r regModel.Registration
	err := db.WithContext(ctx).
		Preload("User").Preload("MembershipType").Preload("Payment").Preload("Document").
		First(&r, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFoundError("Registration not found")
		}
		return nil, helper.PersistenceError("Failed to get registration", err)
	}
	return &r, nil
}

// PatchRegistration changes status and/or expiry, returning the row before and after.
func PatchRegistration(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.PatchRegistrationRequest) (before, after *regModel.Registration, err error) {
	if req.IsEmpty() {
		return nil, nil, helper.ValidationError("No updates")
	}
	if ae := helper.ValidateStruct(req); ae != nil {
		return nil, nil, ae
	}

	var cur regModel.Registration
	if err := db.WithContext(ctx).First(&cur, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, helper.NotFoundError("Registration not found")
		}
		return nil, nil, helper.PersistenceError("Failed to update registration", err)
	}
	snapshot := cur

	updates := map[string]any{}
	if req.MembershipStatus != nil {
		updates["membership_status"] = *req.MembershipStatus
	}
	if req.MembershipExpiry != nil {
		exp, _ := helper.ParseDate(*req.MembershipExpiry)
		if exp.Before(helper.DateOnly(cur.CreatedAt)) {
			return nil, nil, helper.ValidationError("membership_expiry cannot be before the registration date")
		}
		updates["membership_expiry"] = exp
	}
	if err := db.WithContext(ctx).Model(&cur).Updates(updates).Error; err != nil {
		return nil, nil, helper.PersistenceError("Failed to update registration", err)
	}
	if err := db.WithContext(ctx).First(&cur, "id = ?", id).Error; err != nil {
		return nil, nil, helper.PersistenceError("Failed to update registration", err)
	}
	return &snapshot, &cur, nil
}
