package checkout

import (
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
	"github.com/wichananm65/clickshop-backend/internal/cart"
	"github.com/wichananm65/clickshop-backend/internal/order"
	"github.com/wichananm65/clickshop-backend/internal/validation"
)

type Handler struct {
	service  *Service
	validate *validatorv10.Validate
}

func NewHandler(s *Service, v *validatorv10.Validate) *Handler {
	return &Handler{service: s, validate: v}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Post("/cart/:userId/checkout", h.checkout)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := cart.IDParam(c, "userId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(order.Shipping)
	if err := validation.BindAndValidate(c, payload, h.validate); err != nil {
		return nil
	}

	placed, err := h.service.Checkout(c.UserContext(), userID, *payload)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Checkout successful",
		"order":   placed,
	})
}
