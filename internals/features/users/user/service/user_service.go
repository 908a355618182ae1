package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	regModel "membership_backend/internals/features/membership/registrations/model"
	emailModel "membership_backend/internals/features/notifications/emails/model"
	"membership_backend/internals/features/users/user/dto"
	uModel "membership_backend/internals/features/users/user/model"
	helper "membership_backend/internals/helpers"
)

/* ============ Read ============ */

// ListUsers pages members newest first and attaches each one's latest registration.
func ListUsers(ctx context.Context, db *gorm.DB, q string, p helper.Paging) ([]dto.UserListItem, int64, error) {
	tx := db.WithContext(ctx).Model(&uModel.User{})
	if s := strings.TrimSpace(q); s != "" {
		like := helper.LikeContains(s)
		tx = tx.Where(`LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?
			OR phone_number LIKE ?`, like, like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []uModel.User
	if err := tx.Order("created_at DESC").Limit(p.PageSize).Offset(p.Offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	latest, err := LatestRegistrations(ctx, db, userIDs(users))
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.UserListItem, 0, len(users))
	for i := range users {
		out = append(out, dto.ToUserListItem(&users[i], latest[users[i].ID]))
	}
	return out, total, nil
}

// LatestRegistrations maps user id to that user's most recent registration.
func LatestRegistrations(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*regModel.Registration, error) {
	out := make(map[uuid.UUID]*regModel.Registration, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var regs []regModel.Registration
	if err := db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("created_at DESC").
		Find(&regs).Error; err != nil {
		return nil, err
	}
	for i := range regs {
		if _, seen := out[regs[i].UserID]; !seen {
			out[regs[i].UserID] = &regs[i]
		}
	}
	return out, nil
}

func GetUser(ctx context.Context, db *gorm.DB, id uuid.UUID) (*dto.UserDetail, error) {
	var u uModel.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NotFoundError("User not found")
		}
		return nil, helper.PersistenceError("Failed to get user", err)
	}
	var regs []regModel.Registration
	if err := db.WithContext(ctx).Preload("MembershipType").
		Where("user_id = ?", id).Order("created_at DESC").
		Find(&regs).Error; err != nil {
		return nil, helper.PersistenceError("Failed to get user", err)
	}
	detail := &dto.UserDetail{User: &u, Registrations: make([]dto.UserRegistration, 0, len(regs))}
	for i := range regs {
		detail.Registrations = append(detail.Registrations, dto.ToUserRegistration(&regs[i]))
	}
	return detail, nil
}

/* ============ Write ============ */

func CreateUser(ctx context.Context, db *gorm.DB, req dto.CreateUserRequest) (*uModel.User, error) {
	req.Normalize()
	if ae := helper.ValidateStruct(req); ae != nil {
		return nil, ae
	}
	u := req.ToModel()
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.ConflictError("A user with this email already exists")
		}
		return nil, helper.PersistenceError("Failed to create user", err)
	}
	return u, nil
}

// UpdateUser applies a tri-state patch and returns the row before and after.
func UpdateUser(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.UpdateUserRequest) (before, after *uModel.User, err error) {
	var cur uModel.User
	if err := db.WithContext(ctx).First(&cur, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, helper.NotFoundError("User not found")
		}
		return nil, nil, helper.PersistenceError("Failed to update user", err)
	}
	snapshot := cur

	updates, ae := buildUserUpdates(req)
	if ae != nil {
		return nil, nil, ae
	}
	if len(updates) == 0 {
		return nil, nil, helper.ValidationError("No updates")
	}

	if err := db.WithContext(ctx).Model(&cur).Updates(updates).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, nil, helper.ConflictError("A user with this email already exists")
		}
		return nil, nil, helper.PersistenceError("Failed to update user", err)
	}
	if err := db.WithContext(ctx).First(&cur, "id = ?", id).Error; err != nil {
		return nil, nil, helper.PersistenceError("Failed to update user", err)
	}
	return &snapshot, &cur, nil
}

type textRule struct {
	column   string
	field    *helper.PatchField[string]
	required bool
	check    func(string) string // returns an error message or ""
}

func buildUserUpdates(req dto.UpdateUserRequest) (map[string]any, *helper.AppError) {
	minLen := func(name string, n int) func(string) string {
		return func(v string) string {
			if len([]rune(v)) < n {
				return name + " is too short"
			}
			return ""
		}
	}
	phone := func(name string) func(string) string {
		return func(v string) string {
			if !helper.IsGhanaPhone(v) {
				return name + " must be in format +233XXXXXXXXX"
			}
			return ""
		}
	}
	oneOf := func(name string, allowed ...string) func(string) string {
		return func(v string) string {
			for _, a := range allowed {
				if v == a {
					return ""
				}
			}
			return name + " must be one of: " + strings.Join(allowed, ", ")
		}
	}

	rules := []textRule{
		{"first_name", &req.FirstName, true, minLen("first_name", 2)},
		{"middle_name", &req.MiddleName, false, nil},
		{"last_name", &req.LastName, true, minLen("last_name", 2)},
		{"email", &req.Email, true, func(v string) string {
			if helper.Validator().Var(v, "email") != nil {
				return "Invalid email address"
			}
			return ""
		}},
		{"phone_number", &req.PhoneNumber, true, phone("phone_number")},
		{"alternative_phone", &req.AlternativePhone, false, phone("alternative_phone")},
		{"gender", &req.Gender, true, oneOf("gender", uModel.GenderMale, uModel.GenderFemale, uModel.GenderPreferNotToSay)},
		{"nationality", &req.Nationality, true, minLen("nationality", 2)},
		{"id_type", &req.IDType, true, oneOf("id_type", uModel.IDTypeGhanaCard, uModel.IDTypePassport, uModel.IDTypeVoterID, uModel.IDTypeDriverLicense)},
		{"id_number", &req.IDNumber, true, minLen("id_number", 5)},
		{"street_address", &req.StreetAddress, true, minLen("street_address", 5)},
		{"city", &req.City, true, minLen("city", 2)},
		{"region", &req.Region, true, minLen("region", 2)},
		{"digital_address", &req.DigitalAddress, false, nil},
	}

	updates := map[string]any{}
	for _, r := range rules {
		if !r.field.Set {
			continue
		}
		v, ok := r.field.Get()
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			if r.required {
				return nil, helper.ValidationError(r.column + " cannot be empty")
			}
			updates[r.column] = nil
			continue
		}
		if r.column == "email" {
			v = strings.ToLower(v)
		}
		if r.check != nil {
			if msg := r.check(v); msg != "" {
				return nil, helper.ValidationError(msg)
			}
		}
		updates[r.column] = v
	}

	if req.DateOfBirth.Set {
		v, ok := req.DateOfBirth.Get()
		if !ok {
			return nil, helper.ValidationError("date_of_birth cannot be empty")
		}
		dob, err := helper.ParseDate(v)
		if err != nil {
			return nil, helper.ValidationError("date_of_birth must be a date in YYYY-MM-DD format")
		}
		updates["date_of_birth"] = dob
	}

	if req.EmergencyContact.Set {
		ec, ok := req.EmergencyContact.Get()
		if !ok {
			updates["emergency_contact"] = datatypes.JSON("{}")
		} else {
			if ae := helper.ValidateStruct(ec); ae != nil {
				return nil, ae
			}
			b, _ := json.Marshal(uModel.EmergencyContactInfo{
				Name:         strings.TrimSpace(ec.Name),
				Relationship: strings.TrimSpace(ec.Relationship),
				Phone:        strings.TrimSpace(ec.Phone),
			})
			updates["emergency_contact"] = datatypes.JSON(b)
		}
	}

	if req.ProfessionalInfo.Set {
		raw, ok := req.ProfessionalInfo.Get()
		if !ok {
			updates["professional_info"] = datatypes.JSON("{}")
		} else {
			if !json.Valid(raw) || !strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
				return nil, helper.ValidationError("professional_info must be a JSON object")
			}
			updates["professional_info"] = datatypes.JSON(raw)
		}
	}
	return updates, nil
}

// DeleteUser removes the member with their registrations and documents in one transaction.
// Payments and email logs are kept; email logs lose their registration link.
func DeleteUser(ctx context.Context, db *gorm.DB, id uuid.UUID) (*uModel.User, int, error) {
	var u uModel.User
	var removed int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return err
		}
		var regIDs []uuid.UUID
		if err := tx.Model(&regModel.Registration{}).Where("user_id = ?", id).Pluck("id", &regIDs).Error; err != nil {
			return err
		}
		if len(regIDs) > 0 {
			if err := tx.Where("registration_id IN ?", regIDs).Delete(&regModel.RegistrationDocument{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&emailModel.EmailNotification{}).Where("registration_id IN ?", regIDs).
				Update("registration_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", regIDs).Delete(&regModel.Registration{}).Error; err != nil {
				return err
			}
		}
		removed = len(regIDs)
		return tx.Delete(&u).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, helper.NotFoundError("User not found")
		}
		return nil, 0, helper.PersistenceError("Failed to delete user", err)
	}
	return &u, removed, nil
}

func userIDs(users []uModel.User) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
