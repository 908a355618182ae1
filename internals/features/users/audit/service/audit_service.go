package service

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditModel "membership_backend/internals/features/users/audit/model"
)

// LocalsAdminID is the Locals key the admin guard fills with the admin id string.
const LocalsAdminID = "admin_id"

type Entry struct {
	AdminUserID *uuid.UUID
	Action      string
	EntityType  string
	EntityID    string
	OldValues   any
	NewValues   any
	IPAddress   string
	UserAgent   string
}

// FromRequest fills actor, IP and user agent from the request.
func FromRequest(c *fiber.Ctx, action, entityType, entityID string, oldValues, newValues any) Entry {
	e := Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  c.IP(),
		UserAgent:  c.Get(fiber.HeaderUserAgent),
	}
	if s, ok := c.Locals(LocalsAdminID).(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			e.AdminUserID = &id
		}
	}
	return e
}

// Record appends an audit row. Failures are logged and swallowed.
func Record(db *gorm.DB, e Entry) {
	row := auditModel.AuditLog{
		AdminUserID: e.AdminUserID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		OldValues:   toJSON(e.OldValues),
		NewValues:   toJSON(e.NewValues),
	}
	if e.EntityID != "" {
		row.EntityID = &e.EntityID
	}
	if e.IPAddress != "" {
		row.IPAddress = &e.IPAddress
	}
	if e.UserAgent != "" {
		row.UserAgent = &e.UserAgent
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("[WARN] audit %s %s/%s not recorded: %v", e.Action, e.EntityType, e.EntityID, err)
	}
}

// Log is FromRequest + Record.
func Log(c *fiber.Ctx, db *gorm.DB, action, entityType, entityID string, oldValues, newValues any) {
	Record(db.WithContext(c.UserContext()), FromRequest(c, action, entityType, entityID, oldValues, newValues))
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
