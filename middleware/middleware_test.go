package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminApp(token string) *fiber.App {
	app := fiber.New()
	app.Get("/admin/ping", ServiceTokenMiddleware(token), AdminContextMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(AdminID(c))
	})
	return app
}

func TestServiceTokenMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"missing header", "secret", "", fiber.StatusUnauthorized},
		{"wrong token", "secret", "Bearer nope", fiber.StatusUnauthorized},
		{"bearer token", "secret", "Bearer secret", fiber.StatusOK},
		{"raw token", "secret", "secret", fiber.StatusOK},
		{"disabled", "", "Bearer secret", fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newAdminApp(tt.token).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAdminContextMiddleware(t *testing.T) {
	app := newAdminApp("secret")

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Admin-ID", "tolu")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "tolu", string(body))
}
