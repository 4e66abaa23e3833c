package security

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		cfg      HeadersConfig
		wantHSTS bool
		wantCSP  string
	}{
		{
			name:     "production",
			cfg:      HeadersConfig{},
			wantHSTS: true,
			wantCSP:  "default-src 'none'; connect-src 'self'; frame-ancestors 'none'; base-uri 'none'",
		},
		{
			name:    "development with origins",
			cfg:     HeadersConfig{IsDevelopment: true, ConnectOrigins: []string{"ws://localhost:3000"}},
			wantCSP: "default-src 'none'; connect-src 'self' ws://localhost:3000; frame-ancestors 'none'; base-uri 'none'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(HeadersMiddleware(tt.cfg))
			app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)

			assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
			assert.Equal(t, tt.wantCSP, resp.Header.Get("Content-Security-Policy"))
			assert.Equal(t, tt.wantHSTS, resp.Header.Get("Strict-Transport-Security") != "")
		})
	}
}
