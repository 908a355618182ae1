package service_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership_backend/internals/databases/testdb"
	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
)

func TestLog_RecordsActorAndValues(t *testing.T) {
	db := testdb.New(t)
	adminID := uuid.New()

	app := fiber.New()
	app.Patch("/things/:id", func(c *fiber.Ctx) error {
		c.Locals(auditService.LocalsAdminID, adminID.String())
		auditService.Log(c, db, auditModel.ActionUpdate, "thing", c.Params("id"),
			fiber.Map{"status": "active"}, fiber.Map{"status": "suspended"})
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("PATCH", "/things/42", nil)
	req.Header.Set("User-Agent", "unit-test")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var rows []auditModel.AuditLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, auditModel.ActionUpdate, row.Action)
	require.NotNil(t, row.AdminUserID)
	assert.Equal(t, adminID, *row.AdminUserID)
	require.NotNil(t, row.EntityID)
	assert.Equal(t, "42", *row.EntityID)
	assert.JSONEq(t, `{"status":"suspended"}`, string(row.NewValues))
	require.NotNil(t, row.UserAgent)
	assert.Equal(t, "unit-test", *row.UserAgent)
}

func TestRecord_SwallowsFailures(t *testing.T) {
	db := testdb.New(t)
	require.NoError(t, db.Migrator().DropTable(&auditModel.AuditLog{}))

	assert.NotPanics(t, func() {
		auditService.Record(db, auditService.Entry{Action: "X", EntityType: "y"})
	})
}
