package oauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCorsMiddlewareAllowedOrigin(t *testing.T) {
	handler := CorsMiddleware([]string{"https://fbai-app.example.com"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/facebook/status?shop=demo", nil)
	req.Header.Set("Origin", "https://fbai-app.example.com")
	rr := httptest.NewRecorder()

	handler(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://fbai-app.example.com" {
		t.Errorf("Allow-Origin = %q, want the request origin echoed", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
}

func TestCorsMiddlewareDisallowedOrigin(t *testing.T) {
	handler := CorsMiddleware([]string{"https://fbai-app.example.com"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()

	handler(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want unset for unknown origins", got)
	}
}

func TestCorsMiddlewarePreflight(t *testing.T) {
	called := false
	handler := CorsMiddleware([]string{"https://fbai-app.example.com"}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://fbai-app.example.com")
	rr := httptest.NewRecorder()

	handler(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rr.Code)
	}
	if called {
		t.Error("next handler must not run for preflight requests")
	}
}
