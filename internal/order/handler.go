package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
)

// Handler serves the read-only order routes.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/orders/user/:userId", h.listByUser)
	app.Get("/orders/:orderId", h.getOrder)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("orderId"))
	if err != nil {
		return apperror.Respond(c, apperror.BadRequest(msgInvalidID))
	}
	ord, err := h.service.GetByID(c.UserContext(), orderID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(ord)
}

func (h *Handler) listByUser(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return apperror.Respond(c, apperror.BadRequest(msgInvalidID))
	}
	orders, err := h.service.ListByUser(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(orders)
}
