package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
	authHelper "membership_backend/internals/features/users/auth/helper"
	authModel "membership_backend/internals/features/users/auth/model"
	authRepo "membership_backend/internals/features/users/auth/repository"
	helper "membership_backend/internals/helpers"
	"membership_backend/internals/middlewares/auth"
)

/* ===== /api/admin/admins (super_admin) ===== */

type AdminUsersController struct {
	DB *gorm.DB
}

func NewAdminUsersController(db *gorm.DB) *AdminUsersController {
	return &AdminUsersController{DB: db}
}

type createAdminRequest struct {
	Username string  `json:"username" validate:"omitempty,min=3,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName *string `json:"full_name" validate:"omitempty,max=150"`
	Role     string  `json:"role" validate:"required,oneof=super_admin admin viewer"`
}

type patchAdminRequest struct {
	Role     helper.PatchField[string] `json:"role"`
	IsActive helper.PatchField[bool]   `json:"is_active"`
	Password helper.PatchField[string] `json:"password"`
	FullName helper.PatchField[string] `json:"full_name"`
}

func (ctl *AdminUsersController) List(c *fiber.Ctx) error {
	rows, err := authRepo.ListAdmins(c.UserContext(), ctl.DB)
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to fetch admins", err))
	}
	return helper.JsonOK(c, "Admins fetched", rows)
}

func (ctl *AdminUsersController) Create(c *fiber.Ctx) error {
	var req createAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		req.Username = authHelper.UsernameFromEmail(req.Email)
	}
	if ae := helper.ValidateStruct(req); ae != nil {
		return helper.JsonAppError(c, ae)
	}

	hash, err := authHelper.HashPassword(req.Password)
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to create admin", err))
	}
	admin := &authModel.AdminUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := authRepo.CreateAdmin(c.UserContext(), ctl.DB, admin); err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonAppError(c, helper.ConflictError("Username or email already exists"))
		}
		return helper.JsonAppError(c, helper.PersistenceError("Failed to create admin", err))
	}

	auditService.Log(c, ctl.DB, auditModel.ActionCreate, "admin_user", admin.ID.String(), nil,
		fiber.Map{"username": admin.Username, "email": admin.Email, "role": admin.Role})
	return helper.JsonCreated(c, "Admin created", admin)
}

func (ctl *AdminUsersController) Patch(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Admin")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	var req patchAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	admin, err := authRepo.FindAdminByID(c.UserContext(), ctl.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Admin not found")
		}
		return helper.JsonAppError(c, helper.PersistenceError("Failed to fetch admin", err))
	}
	self := auth.CurrentAdmin(c)

	updates := map[string]any{}
	oldValues := fiber.Map{}
	if v, ok := req.Role.Get(); ok {
		if !authModel.IsValidRole(v) {
			return helper.JsonError(c, fiber.StatusBadRequest, "role must be one of super_admin, admin, viewer")
		}
		if self != nil && self.ID == admin.ID && v != admin.Role {
			return helper.JsonError(c, fiber.StatusBadRequest, "You cannot change your own role")
		}
		updates["role"], oldValues["role"] = v, admin.Role
	}
	if v, ok := req.IsActive.Get(); ok {
		if self != nil && self.ID == admin.ID && !v {
			return helper.JsonError(c, fiber.StatusBadRequest, "You cannot deactivate your own account")
		}
		updates["is_active"], oldValues["is_active"] = v, admin.IsActive
	}
	if v, ok := req.Password.Get(); ok {
		if len(v) < authHelper.MinPasswordLength {
			return helper.JsonError(c, fiber.StatusBadRequest, "Password too short")
		}
		hash, err := authHelper.HashPassword(v)
		if err != nil {
			return helper.JsonAppError(c, helper.PersistenceError("Failed to update admin", err))
		}
		updates["password_hash"] = hash
	}
	if req.FullName.Set {
		v, _ := req.FullName.Get()
		updates["full_name"], oldValues["full_name"] = helper.StrPtr(v), admin.FullName
	}
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "No updates")
	}

	if err := ctl.DB.WithContext(c.UserContext()).Model(admin).Updates(updates).Error; err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to update admin", err))
	}
	if err := ctl.DB.WithContext(c.UserContext()).First(admin, "id = ?", id).Error; err != nil {
		log.Printf("[WARN] reload admin %s: %v", id, err)
	}

	newValues := fiber.Map{}
	for k, v := range updates {
		if k != "password_hash" {
			newValues[k] = v
		}
	}
	if _, ok := updates["password_hash"]; ok {
		newValues["password_changed"] = true
	}
	auditService.Log(c, ctl.DB, auditModel.ActionUpdate, "admin_user", admin.ID.String(), oldValues, newValues)
	return helper.JsonUpdated(c, "Admin updated", admin)
}
