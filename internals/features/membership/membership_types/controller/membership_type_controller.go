package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/membership/membership_types/dto"
	"membership_backend/internals/features/membership/membership_types/service"
	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
	helper "membership_backend/internals/helpers"
)

const entityType = "membership_type"

type MembershipTypeController struct {
	DB *gorm.DB
}

func NewMembershipTypeController(db *gorm.DB) *MembershipTypeController {
	return &MembershipTypeController{DB: db}
}

/* ============ Public ============ */

// GET /api/membership-types
func (ctl *MembershipTypeController) ListPublic(c *fiber.Ctx) error {
	rows, err := service.ListActive(c.UserContext(), ctl.DB)
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to fetch membership types", err))
	}
	return helper.JsonOK(c, "Membership types fetched", dto.ToMembershipTypeDTOs(rows))
}

/* ============ Admin ============ */

// GET /api/admin/membership-types?includeInactive=true
func (ctl *MembershipTypeController) List(c *fiber.Ctx) error {
	rows, err := service.List(c.UserContext(), ctl.DB, helper.QueryBool(c, "includeInactive", false))
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to fetch membership types", err))
	}
	return helper.JsonOK(c, "Membership types fetched", dto.ToMembershipTypeDTOs(rows))
}

func (ctl *MembershipTypeController) Detail(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Membership type")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	m, err := service.Get(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Membership type fetched", dto.ToMembershipTypeDTO(m))
}

func (ctl *MembershipTypeController) Create(c *fiber.Ctx) error {
	var req dto.CreateMembershipTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	m, err := service.Create(c.UserContext(), ctl.DB, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out := dto.ToMembershipTypeDTO(m)
	auditService.Log(c, ctl.DB, auditModel.ActionCreate, entityType, m.ID.String(), nil, out)
	return helper.JsonCreated(c, "Membership type created", out)
}

func (ctl *MembershipTypeController) Patch(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Membership type")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	var req dto.UpdateMembershipTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	before, after, err := service.Update(c.UserContext(), ctl.DB, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out := dto.ToMembershipTypeDTO(after)
	auditService.Log(c, ctl.DB, auditModel.ActionUpdate, entityType, id.String(), dto.ToMembershipTypeDTO(before), out)
	return helper.JsonUpdated(c, "Membership type updated", out)
}

// DELETE deactivates a type that registrations still reference.
func (ctl *MembershipTypeController) Delete(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Membership type")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	res, err := service.Remove(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	auditService.Log(c, ctl.DB, auditModel.ActionDelete, entityType, id.String(), nil, res)
	return helper.JsonDeleted(c, "Membership type removed", res)
}
