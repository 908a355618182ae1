package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/membership/registrations/dto"
	regModel "membership_backend/internals/features/membership/registrations/model"
	"membership_backend/internals/features/membership/registrations/service"
	emailService "membership_backend/internals/features/notifications/emails/service"
	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
	helper "membership_backend/internals/helpers"
)

const entityType = "registration"

type RegistrationController struct {
	DB         *gorm.DB
	Service    *service.RegistrationService
	Dispatcher *emailService.Dispatcher
}

func NewRegistrationController(db *gorm.DB, svc *service.RegistrationService, d *emailService.Dispatcher) *RegistrationController {
	return &RegistrationController{DB: db, Service: svc, Dispatcher: d}
}

/* ===================== Public ===================== */

// POST /api/registrations (multipart: payload + optional profilePhoto)
func (ctl *RegistrationController) Submit(c *fiber.Ctx) error {
	raw := c.FormValue("payload")
	photo, err := c.FormFile("profilePhoto")
	if err != nil {
		photo = nil
	}

	res, err := ctl.Service.Submit(c.UserContext(), raw, photo)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if res.Replayed {
		return helper.JsonOK(c, "Registration already recorded", res)
	}
	return helper.JsonCreated(c, "Registration submitted", res)
}

/* ===================== Admin ===================== */

// GET /api/admin/registrations?q=&status=&page=&pageSize=
func (ctl *RegistrationController) List(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.Query("status"))
	if status != "" && !regModel.IsValidMembershipStatus(status) {
		return helper.JsonError(c, fiber.StatusBadRequest, "status must be one of active, inactive, suspended, expired")
	}
	p := helper.ResolvePaging(c, 20, 100)

	rows, total, err := service.ListRegistrations(c.UserContext(), ctl.DB, service.ListFilter{
		Q:      c.Query("q"),
		Status: status,
		Paging: p,
	})
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to list registrations", err))
	}
	return helper.JsonList(c, "Registrations fetched", dto.ToRegistrationListItems(rows), helper.BuildPagination(total, p, len(rows)))
}

func (ctl *RegistrationController) Detail(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Registration")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	r, err := service.GetRegistration(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Registration fetched", fiber.Map{
		"registration":    r,
		"user":            r.User,
		"membership_type": r.MembershipType,
		"payment":         r.Payment,
		"document":        r.Document,
	})
}

// PATCH /api/admin/registrations/:id {membership_status?, membership_expiry?}
func (ctl *RegistrationController) Patch(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Registration")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	var req dto.PatchRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	before, after, err := service.PatchRegistration(c.UserContext(), ctl.DB, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out := dto.ToRegistrationSummary(after)
	auditService.Log(c, ctl.DB, auditModel.ActionUpdate, entityType, id.String(), dto.ToRegistrationSummary(before), out)
	return helper.JsonUpdated(c, "Registration updated", fiber.Map{"registration": out})
}

// POST /api/admin/registrations/:id/resend-email
func (ctl *RegistrationController) ResendEmail(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Registration")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	row, err := ctl.Dispatcher.ResendLatestForRegistration(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	auditService.Log(c, ctl.DB, auditModel.ActionResendEmail, entityType, id.String(), nil,
		fiber.Map{"subject": row.Subject, "recipient_email": row.RecipientEmail})
	return helper.JsonOK(c, "Email resent", fiber.Map{"ok": true})
}
