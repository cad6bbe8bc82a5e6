package validation

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate parses the JSON body into out and runs struct validation.
// On failure it writes a 400 response and returns a non-nil error so the
// handler can stop.
func BindAndValidate(c *fiber.Ctx, out interface{}, v *validatorv10.Validate) error {
	if err := c.BodyParser(out); err != nil {
		if werr := c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
			"error":   "bad_request",
		}); werr != nil {
			return werr
		}
		return err
	}

	if err := v.Struct(out); err != nil {
		if werr := c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "validation failed",
			"error":   "bad_request",
			"fields":  errorsToMap(err),
		}); werr != nil {
			return werr
		}
		return err
	}
	return nil
}

func errorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return out
	}
	out["error"] = err.Error()
	return out
}
