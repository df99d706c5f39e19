package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gigboard/gigadmin/internal/middleware"
)

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		proto    string
		wantHSTS string
	}{
		{"plain http", "", ""},
		{"behind tls proxy", "https", "max-age=63072000; includeSubDomains"},
		{"proxy says http", "http", ""},
	}

	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/users", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/users", http.NoBody)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.wantHSTS)
			}

			for header, want := range map[string]string{
				"X-Content-Type-Options":       "nosniff",
				"X-Frame-Options":              "DENY",
				"Referrer-Policy":              "no-referrer",
				"Cache-Control":                "no-store",
				"Cross-Origin-Resource-Policy": "same-origin",
			} {
				if got := w.Header().Get(header); got != want {
					t.Errorf("%s = %q, want %q", header, got, want)
				}
			}
		})
	}
}
