package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Params(name)))
}

// UUIDParam answers 404 for ids that cannot exist.
func UUIDParam(c *fiber.Ctx, name, what string) (uuid.UUID, *AppError) {
	id, err := ParseUUIDParam(c, name)
	if err != nil {
		return uuid.Nil, NotFoundError(what + " not found")
	}
	return id, nil
}

// QueryBool reads true/false/1/0 with a default for anything else.
func QueryBool(c *fiber.Ctx, key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return def
}

func ParseUUIDString(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// LikeContains builds a lowercase %q% pattern; pair it with LOWER(column).
func LikeContains(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(q)
	return "%" + q + "%"
}
