package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/healthcare-bi/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAdminKey(t *testing.T) {
	r := gin.New()
	r.POST("/admin", AdminKey("s3cret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		key  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"wrong", http.StatusUnauthorized},
		{"s3cret", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if tc.key != "" {
			req.Header.Set("X-Admin-Key", tc.key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("key %q: expected %d, got %d", tc.key, tc.want, w.Code)
		}
	}
}

func TestAdminKeyDisabledWhenEmpty(t *testing.T) {
	r := gin.New()
	r.POST("/admin", AdminKey(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected open route, got %d", w.Code)
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), Logger(zerolog.New(&buf)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" {
		t.Fatalf("expected generated request id")
	}
	if !strings.Contains(buf.String(), generated) {
		t.Fatalf("expected request id in log line: %s", buf.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected caller request id to be kept")
	}
}

func TestRequestIDReachesRequestContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.POST("/api/ingest", func(c *gin.Context) {
		seen = service.RequestID(c.Request.Context())
		c.Status(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	req.Header.Set(RequestIDHeader, "run-42")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "run-42" {
		t.Fatalf("expected request id on context, got %q", seen)
	}
}
