package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/payment/payments/dto"
	"membership_backend/internals/features/payment/payments/model"
	"membership_backend/internals/features/payment/payments/service"
	helper "membership_backend/internals/helpers"
	"membership_backend/internals/metrics"
)

type PaymentController struct {
	DB      *gorm.DB
	Webhook *service.WebhookService
}

func NewPaymentController(db *gorm.DB, webhook *service.WebhookService) *PaymentController {
	return &PaymentController{DB: db, Webhook: webhook}
}

/* ===================== Admin ===================== */

// GET /api/admin/payments?q=&status=&page=&pageSize=
func (ctl *PaymentController) List(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.Query("status"))
	if status != "" && !model.IsValidStatus(status) {
		return helper.JsonError(c, fiber.StatusBadRequest,
			"status must be one of pending, success, completed, failed, abandoned, reversed")
	}
	p := helper.ResolvePaging(c, 20, 100)

	rows, total, err := service.ListPayments(c.UserContext(), ctl.DB, service.ListFilter{
		Q:      c.Query("q"),
		Status: status,
		Paging: p,
	})
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to list payments", err))
	}
	return helper.JsonList(c, "Payments fetched", dto.ToPaymentDTOs(rows), helper.BuildPagination(total, p, len(rows)))
}

func (ctl *PaymentController) Detail(c *fiber.Ctx) error {
	id, ae := helper.UUIDParam(c, "id", "Payment")
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}
	d, err := service.GetPayment(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Payment fetched", d)
}

/* ===================== Webhook ===================== */

// POST /api/webhook/paystack
func (ctl *PaymentController) Paystack(c *fiber.Ctx) error {
	event, result, err := ctl.Webhook.Handle(c.UserContext(), c.Body(), c.Get("x-paystack-signature"))
	if event == "" {
		event = "unknown"
	}
	metrics.WebhookEvents.WithLabelValues(event, result).Inc()

	if err != nil {
		if errors.Is(err, service.ErrBadSignature) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid signature")
		}
		return helper.JsonAppError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
