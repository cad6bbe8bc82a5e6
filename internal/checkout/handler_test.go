package checkout

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/clickshop-backend/internal/validation"
)

const shippingBody = `{"shippingAddress":"221B Baker Street","city":"London","province":"Greater London","postalCode":"NW16XE","country":"United Kingdom"}`

func makeAppWithCheckoutHandler(t *testing.T) (*fiber.App, env) {
	t.Helper()
	e := newEnv(t)
	app := fiber.New()
	NewHandler(e.service, validation.New()).RegisterProtectedRoutes(app)
	return app, e
}

func post(t *testing.T, app *fiber.App, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestCheckoutRoute(t *testing.T) {
	app, _ := makeAppWithCheckoutHandler(t)

	status, body := post(t, app, "/cart/7/checkout", shippingBody)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	if !strings.Contains(body, "Checkout successful") || !strings.Contains(body, `"total":"90"`) {
		t.Fatalf("unexpected body %s", body)
	}

	status, body = post(t, app, "/cart/7/checkout", shippingBody)
	if status != fiber.StatusNotFound || !strings.Contains(body, "Cart or items not found") {
		t.Fatalf("expected 404 on empty cart, got %d: %s", status, body)
	}
}

func TestCheckoutRoute_ValidatesShipping(t *testing.T) {
	app, e := makeAppWithCheckoutHandler(t)

	short := strings.Replace(shippingBody, `"city":"London"`, `"city":"Lon"`, 1)
	status, body := post(t, app, "/cart/7/checkout", short)
	if status != fiber.StatusBadRequest || !strings.Contains(body, "city") {
		t.Fatalf("expected 400 naming city, got %d: %s", status, body)
	}

	status, _ = post(t, app, "/cart/7/checkout", `{"city":"London"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", status)
	}

	orders, _ := e.orders.ListByUser(t.Context(), 7)
	if len(orders) != 0 {
		t.Fatalf("invalid requests must not create orders")
	}
}
