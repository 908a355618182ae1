package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
	"membership_backend/internals/features/users/user/dto"
	"membership_backend/internals/features/users/user/service"
	helper "membership_backend/internals/helpers"
)

const entityType = "user"

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GET /api/users?q=&page=&pageSize=
func (ctl *UserController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := service.ListUsers(c.UserContext(), ctl.DB, c.Query("q"), p)
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to list users", err))
	}
	return helper.JsonList(c, "Users fetched", rows, helper.BuildPagination(total, p, len(rows)))
}

func (ctl *UserController) Detail(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "User")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	d, err := service.GetUser(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "User fetched", d)
}

func (ctl *UserController) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	u, err := service.CreateUser(c.UserContext(), ctl.DB, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	auditService.Log(c, ctl.DB, auditModel.ActionCreate, entityType, u.ID.String(), nil, u)
	return helper.JsonCreated(c, "User created", u)
}

// PATCH /api/users/:id  (absent = keep, null = clear, value = set)
func (ctl *UserController) Patch(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "User")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	before, after, err := service.UpdateUser(c.UserContext(), ctl.DB, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	auditService.Log(c, ctl.DB, auditModel.ActionUpdate, entityType, id.String(), before, after)
	return helper.JsonUpdated(c, "User updated", after)
}

func (ctl *UserController) Delete(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "User")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	u, removed, err := service.DeleteUser(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	auditService.Log(c, ctl.DB, auditModel.ActionDelete, entityType, id.String(), u,
		fiber.Map{"registrations_removed": removed})
	return helper.JsonDeleted(c, "User deleted", fiber.Map{"id": id, "registrations_removed": removed})
}
