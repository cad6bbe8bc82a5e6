package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Kind classifies a failure so handlers can pick a status code without
// inspecting messages.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindBadRequest Kind = "bad_request"
	KindInternal   Kind = "internal"
)

// Error is the typed failure returned by services. Message is safe to show to
// clients; Err carries the low-level cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf reports the Kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Status maps a Kind onto an HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindBadRequest:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes err as {"message", "error"} JSON with the matching status.
// Causes of internal errors are logged and replaced by the public message.
func Respond(c *fiber.Ctx, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal("INTERNAL SERVER ERROR", err)
	}
	if e.Kind == KindInternal && e.Err != nil {
		log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", e.Err)
	}
	return c.Status(Status(e.Kind)).JSON(fiber.Map{"message": e.Message, "error": e.Kind})
}

// ErrorHandler is installed as fiber's ErrorHandler so framework errors and
// recovered panics share the body shape used by Respond.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := KindInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			kind = KindNotFound
		case fiber.StatusConflict:
			kind = KindConflict
		case fiber.StatusBadRequest:
			kind = KindBadRequest
		}
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message, "error": kind})
	}
	return Respond(c, err)
}
