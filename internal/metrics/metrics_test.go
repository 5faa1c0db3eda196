package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/chats/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	ok := HTTPRequestsTotal.WithLabelValues("GET", "/api/chats/:id", "204")
	before := testutil.ToFloat64(ok)
	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/chats/"+id, nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		resp.Body.Close()
	}
	if got := testutil.ToFloat64(ok) - before; got != 2 {
		t.Errorf("requests counted under the route pattern = %v, want 2", got)
	}
}
