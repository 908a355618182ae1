package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/notifications/emails/dto"
	emailModel "membership_backend/internals/features/notifications/emails/model"
	emailService "membership_backend/internals/features/notifications/emails/service"
	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
	helper "membership_backend/internals/helpers"
)

type EmailNotificationController struct {
	DB         *gorm.DB
	Dispatcher *emailService.Dispatcher
}

func NewEmailNotificationController(db *gorm.DB, d *emailService.Dispatcher) *EmailNotificationController {
	return &EmailNotificationController{DB: db, Dispatcher: d}
}

// GET /api/admin/email-notifications?q=&status=&page=&pageSize=
func (ctl *EmailNotificationController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	q := ctl.DB.WithContext(c.UserContext()).Model(&emailModel.EmailNotification{})

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := helper.LikeContains(s)
		q = q.Where("LOWER(recipient_email) LIKE ? OR LOWER(subject) LIKE ?", like, like)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		if !emailModel.IsValidEmailStatus(st) {
			return helper.JsonError(c, fiber.StatusBadRequest, "status must be one of pending, sent, failed")
		}
		q = q.Where("status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to list emails", err))
	}

	var rows []emailModel.EmailNotification
	if err := q.Order("COALESCE(sent_at, created_at) DESC").
		Limit(p.PageSize).Offset(p.Offset).
		Find(&rows).Error; err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to list emails", err))
	}

	return helper.JsonList(c, "Emails fetched", dto.ToEmailNotificationItems(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/admin/email-notifications/:id
func (ctl *EmailNotificationController) Detail(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Email")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	var row emailModel.EmailNotification
	if err := ctl.DB.WithContext(c.UserContext()).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Email not found")
		}
		return helper.JsonAppError(c, helper.PersistenceError("Failed to get email", err))
	}
	return helper.JsonOK(c, "Email fetched", row)
}

// POST /api/admin/email-notifications/:id/resend
func (ctl *EmailNotificationController) Resend(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Email")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	row, err := ctl.Dispatcher.Resend(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	auditService.Log(c, ctl.DB, auditModel.ActionResendEmail, "email_notification", id.String(), nil,
		fiber.Map{"subject": row.Subject, "recipient_email": row.RecipientEmail})
	return helper.JsonOK(c, "Email resent", fiber.Map{"ok": true, "email": dto.ToEmailNotificationItem(row)})
}
