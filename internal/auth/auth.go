package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// LocalsKey is where the jwt middleware stores the parsed token.
const LocalsKey = "user"

// UserIDFromCtx reads the user_id claim from the token placed in locals by
// the jwt middleware.
func UserIDFromCtx(c *fiber.Ctx) (int, error) {
	tok, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || tok == nil {
		return 0, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	switch v := claims["user_id"].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		return id, nil
	default:
		return 0, fiber.ErrUnauthorized
	}
}

// CallerKey is the locals key holding the authenticated user id for access
// logs.
const CallerKey = "callerId"

// TagCaller copies the token's user id into locals under CallerKey. Requests
// without a usable token are tagged "-".
func TagCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := "-"
		if id, err := UserIDFromCtx(c); err == nil {
			caller = strconv.Itoa(id)
		}
		c.Locals(CallerKey, caller)
		return c.Next()
	}
}
