package oauth

import (
	"net/http/httptest"
	"strings"
	"testing"
)

const testAppURL = "https://fbai-app.example.com"

func TestPopupBridgeSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	WritePopupBridge(rr, testAppURL, Success("demo.myshopify.com"))

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"FACEBOOK_AUTH_SUCCESS",
		"demo.myshopify.com",
		"window.opener",
		"window.opener.postMessage",
		"window.close()",
		"window.location.href",
		testAppURL,
		"/app?success=facebook_connected",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("bridge body missing %q", want)
		}
	}

	if strings.Contains(body, `"*"`) || strings.Contains(body, "'*'") {
		t.Error("bridge must not post to a wildcard origin")
	}
}

func TestPopupBridgeError(t *testing.T) {
	rr := httptest.NewRecorder()
	WritePopupBridge(rr, testAppURL, Failure("Could not determine which shop to connect", ErrCodeInvalidCallback))

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200 even on error", rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"FACEBOOK_AUTH_ERROR",
		"Could not determine which shop to connect",
		"/app?error=invalid_callback",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("bridge body missing %q", want)
		}
	}
	if strings.Contains(body, "FACEBOOK_AUTH_SUCCESS") {
		t.Error("error bridge must not carry the success type")
	}
}

func TestPopupBridgeErrorDefaultsCode(t *testing.T) {
	rr := httptest.NewRecorder()
	WritePopupBridge(rr, testAppURL, Failure("Token exchange failed", ""))

	if !strings.Contains(rr.Body.String(), "/app?error=facebook_auth_failed") {
		t.Errorf("bridge should fall back to %s, body: %s", ErrCodeAuthFailed, rr.Body.String())
	}
}
