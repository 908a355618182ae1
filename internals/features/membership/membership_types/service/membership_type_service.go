package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"membership_backend/internals/features/membership/membership_types/dto"
	"membership_backend/internals/features/membership/membership_types/model"
	helper "membership_backend/internals/helpers"
)

const slugMaxLen = 120

// RemoveResult tells whether a type was deleted or only deactivated.
type RemoveResult struct {
	Deleted     bool `json:"deleted"`
	Deactivated bool `json:"deactivated"`
}

func ListActive(ctx context.Context, db *gorm.DB) ([]model.MembershipType, error) {
	var rows []model.MembershipType
	err := db.WithContext(ctx).Where("is_active = ?", true).Order("price DESC").Find(&rows).Error
	return rows, err
}

func List(ctx context.Context, db *gorm.DB, includeInactive bool) ([]model.MembershipType, error) {
	q := db.WithContext(ctx).Order("price DESC").Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var rows []model.MembershipType
	err := q.Find(&rows).Error
	return rows, err
}

func Get(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.MembershipType, error) {
	var m model.MembershipType
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFoundError("Membership type not found")
		}
		return nil, helper.PersistenceError("Failed to fetch membership type", err)
	}
	return &m, nil
}

func Create(ctx context.Context, db *gorm.DB, req dto.CreateMembershipTypeRequest) (*model.MembershipType, error) {
	req.Name = strings.TrimSpace(req.Name)
	if ae := helper.ValidateStruct(req); ae != nil {
		return nil, ae
	}

	base := req.Slug
	if strings.TrimSpace(base) == "" {
		base = req.Name
	}
	slug, err := helper.EnsureUniqueSlug(ctx, db, "membership_types", "slug", helper.Slugify(base, slugMaxLen), "")
	if err != nil {
		return nil, helper.PersistenceError("Failed to create membership type", err)
	}

	m := &model.MembershipType{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		Benefits:    benefitsJSON(req.Benefits),
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.ConflictError("A membership type with this slug already exists")
		}
		return nil, helper.PersistenceError("Failed to create membership type", err)
	}
	return m, nil
}

// Update applies a partial change and returns the row before and after.
func Update(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.UpdateMembershipTypeRequest) (before, after *model.MembershipType, err error) {
	cur, err := Get(ctx, db, id)
	if err != nil {
		return nil, nil, err
	}
	snapshot := *cur

	updates := map[string]any{}
	if v, ok := req.Name.Get(); ok {
		v = strings.TrimSpace(v)
		if len(v) < 2 {
			return nil, nil, helper.ValidationError("name must be at least 2 characters")
		}
		updates["name"] = v
	}
	if v, ok := req.Slug.Get(); ok {
		slug, err := helper.EnsureUniqueSlug(ctx, db, "membership_types", "slug", helper.Slugify(v, slugMaxLen), id.String())
		if err != nil {
			return nil, nil, helper.PersistenceError("Failed to update membership type", err)
		}
		updates["slug"] = slug
	}
	if req.Description.Set {
		v, _ := req.Description.Get()
		updates["description"] = helper.StrPtr(v)
	}
	if v, ok := req.Price.Get(); ok {
		if v < 0 {
			return nil, nil, helper.ValidationError("price must be 0 or greater")
		}
		updates["price"] = v
	}
	if req.Benefits.Set {
		v, _ := req.Benefits.Get()
		updates["benefits"] = benefitsJSON(v)
	}
	if v, ok := req.IsActive.Get(); ok {
		updates["is_active"] = v
	}
	if len(updates) == 0 {
		return nil, nil, helper.ValidationError("No updates")
	}

	if err := db.WithContext(ctx).Model(cur).Updates(updates).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, nil, helper.ConflictError("A membership type with this slug already exists")
		}
		return nil, nil, helper.PersistenceError("Failed to update membership type", err)
	}
	fresh, err := Get(ctx, db, id)
	if err != nil {
		return nil, nil, err
	}
	return &snapshot, fresh, nil
}

// Remove hard deletes an unused type; one referenced by registrations is deactivated instead.
func Remove(ctx context.Context, db *gorm.DB, id uuid.UUID) (*RemoveResult, error) {
	cur, err := Get(ctx, db, id)
	if err != nil {
		return nil, err
	}

	var refs int64
	if err := db.WithContext(ctx).Table("registrations").Where("membership_type_id = ?", id).Count(&refs).Error; err != nil {
		return nil, helper.PersistenceError("Failed to delete membership type", err)
	}
	if refs > 0 {
		if err := db.WithContext(ctx).Model(cur).Update("is_active", false).Error; err != nil {
			return nil, helper.PersistenceError("Failed to deactivate membership type", err)
		}
		return &RemoveResult{Deactivated: true}, nil
	}
	if err := db.WithContext(ctx).Delete(cur).Error; err != nil {
		return nil, helper.PersistenceError("Failed to delete membership type", err)
	}
	return &RemoveResult{Deleted: true}, nil
}

func benefitsJSON(items []string) datatypes.JSON {
	clean := make([]string, 0, len(items))
	for _, b := range items {
		if b = strings.TrimSpace(b); b != "" {
			clean = append(clean, b)
		}
	}
	raw, _ := json.Marshal(clean)
	return datatypes.JSON(raw)
}
