package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/recipebox/internal/http/handlers"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	h := handlers.NewHealthHandler(map[string]handlers.Check{"postgres": ok})
	if w := do(setupRouter(http.MethodGet, "/healthz", nil, h.Healthz), http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz got %d", w.Code)
	}
	if w := do(setupRouter(http.MethodGet, "/readyz", nil, h.Readyz), http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz got %d", w.Code)
	}

	h = handlers.NewHealthHandler(map[string]handlers.Check{"postgres": ok, "redis": down})
	w := do(setupRouter(http.MethodGet, "/readyz", nil, h.Readyz), http.MethodGet, "/readyz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "redis") || strings.Contains(w.Body.String(), "postgres") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}
