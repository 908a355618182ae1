package helper

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

/* ===============================
   Error taxonomy
=================================*/

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindAuth         ErrorKind = "auth"
	KindNotFound     ErrorKind = "not_found"
	KindRateLimit    ErrorKind = "rate_limit"
	KindConflict     ErrorKind = "conflict"
	KindPersistence  ErrorKind = "persistence"
	KindNotification ErrorKind = "notification"
)

// AppError carries a user-facing message; Err is the internal cause and is only logged.
type AppError struct {
	Kind       ErrorKind
	Status     int
	Message    string
	Fields     map[string][]string
	RetryAfter int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func ValidationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Status: fiber.StatusBadRequest, Message: msg}
}

func ValidationFieldsError(msg string, fields map[string][]string) *AppError {
	return &AppError{Kind: KindValidation, Status: fiber.StatusBadRequest, Message: msg, Fields: fields}
}

func UnauthorizedError(msg string) *AppError {
	return &AppError{Kind: KindAuth, Status: fiber.StatusUnauthorized, Message: msg}
}

func ForbiddenError(msg string) *AppError {
	return &AppError{Kind: KindAuth, Status: fiber.StatusForbidden, Message: msg}
}

func NotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Status: fiber.StatusNotFound, Message: msg}
}

func RateLimitError(retryAfter int) *AppError {
	return &AppError{
		Kind:       KindRateLimit,
		Status:     fiber.StatusTooManyRequests,
		Message:    "Too many requests. Please try again later.",
		RetryAfter: retryAfter,
	}
}

// ConflictError is reported as 400: duplicate or invalid reference state.
func ConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Status: fiber.StatusBadRequest, Message: msg}
}

func PersistenceError(msg string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Status: fiber.StatusInternalServerError, Message: msg, Err: err}
}

// NotificationError never reaches the client as a failure status.
func NotificationError(msg string, err error) *AppError {
	return &AppError{Kind: KindNotification, Status: fiber.StatusOK, Message: msg, Err: err}
}

// DeliveryError is a notification failure the caller asked for explicitly (resend).
func DeliveryError(msg string, err error) *AppError {
	return &AppError{Kind: KindNotification, Status: fiber.StatusInternalServerError, Message: msg, Err: err}
}

// AsAppError unwraps err into an *AppError, or nil.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

/* ===============================
   DB error classification
=================================*/

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation covers Postgres 23505 and GORM's translated duplicate-key error.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

/* ===============================
   Rendering
=================================*/

// JsonAppError renders any error with the standard envelope; unknown errors become 500.
func JsonAppError(c *fiber.Ctx, err error) error {
	if ae := AsAppError(err); ae != nil {
		if ae.Err != nil {
			log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), ae)
		}
		if ae.RetryAfter > 0 {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(ae.RetryAfter))
		}
		if ae.Kind == KindValidation && len(ae.Fields) > 0 {
			return JsonValidationError(c, ae.Message, ae.Fields)
		}
		return JsonError(c, ae.Status, ae.Message)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}

	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return JsonError(c, fiber.StatusInternalServerError, "Internal server error")
}

// FiberErrorHandler plugs JsonAppError into fiber.Config.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	return JsonAppError(c, err)
}
