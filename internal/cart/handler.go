package cart

import (
	"strconv"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/clickshop-backend/internal/apperror"
	"github.com/wichananm65/clickshop-backend/internal/validation"
)

// Handler exposes the cart store over HTTP.
type Handler struct {
	service  *Service
	validate *validatorv10.Validate
}

func NewHandler(s *Service, v *validatorv10.Validate) *Handler {
	return &Handler{service: s, validate: v}
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Put("/cart/:userId", h.ensureCart)
	app.Post("/cart/:userId", h.addItem)
	app.Get("/cart/:userId", h.getCart)
	app.Get("/cart/:userId/items", h.listItems)
	app.Put("/cart/:userId/items/:itemId/quantity", h.updateQuantity)
	app.Delete("/cart/:userId/items/:itemId", h.removeItem)
	app.Delete("/cart/:userId", h.removeAll)
}

// IDParam parses a positive integer path parameter.
func IDParam(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest(msgInvalidID)
	}
	return id, nil
}

func (h *Handler) ensureCart(c *fiber.Ctx) error {
	userID, err := IDParam(c, "userId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	cart, err := h.service.EnsureCart(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(cart)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, err := IDParam(c, "userId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(AddItemInput)
	if err := validation.BindAndValidate(c, payload, h.validate); err != nil {
		return nil
	}
	item, err := h.service.AddItem(c.UserContext(), userID, *payload)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := IDParam(c, "userId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	cart, err := h.service.GetCartByUserID(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(cart)
}

func (h *Handler) listItems(c *fiber.Ctx) error {
	userID, err := IDParam(c, "userId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	items, err := h.service.ListItems(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	userID, err := IDParam(c, "userId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	itemID, err := IDParam(c, "itemId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	payload := new(UpdateQuantityInput)
	if err := validation.BindAndValidate(c, payload, h.validate); err != nil {
		return nil
	}
	item, err := h.service.UpdateItemQuantity(c.UserContext(), userID, itemID, payload.Quantity)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := IDParam(c, "userId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	itemID, err := IDParam(c, "itemId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	item, err := h.service.RemoveItem(c.UserContext(), userID, itemID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) removeAll(c *fiber.Ctx) error {
	userID, err := IDParam(c, "userId")
	if err != nil {
		return apperror.Respond(c, err)
	}
	items, err := h.service.RemoveAllItems(c.UserContext(), userID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(items)
}
