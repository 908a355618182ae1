// Package testdb opens an in-memory SQLite database with the full schema for package tests.
package testdb

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	typeModel "membership_backend/internals/features/membership/membership_types/model"
	regModel "membership_backend/internals/features/membership/registrations/model"
	emailModel "membership_backend/internals/features/notifications/emails/model"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	auditModel "membership_backend/internals/features/users/audit/model"
	authModel "membership_backend/internals/features/users/auth/model"
	userModel "membership_backend/internals/features/users/user/model"
)

// Models lists every table the service owns.
func Models() []any {
	return []any{
		&typeModel.MembershipType{},
		&userModel.User{},
		&paymentModel.Payment{},
		&regModel.Registration{},
		&regModel.RegistrationDocument{},
		&regModel.MembershipSequence{},
		&emailModel.EmailNotification{},
		&authModel.AdminUser{},
		&authModel.TokenBlacklist{},
		&auditModel.AuditLog{},
	}
}

// New returns a migrated in-memory database that is closed when the test ends.
// A single pooled connection keeps every query on the same in-memory database.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
