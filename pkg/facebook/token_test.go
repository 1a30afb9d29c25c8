package facebook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("app-id", "app-secret", "https://fbai-app.example.com/auth/facebook/callback", nil)
	c.SetBaseURL(serverURL)
	return c
}

func TestExchangeCode(t *testing.T) {
	var gotForm string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/oauth/access_token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		gotForm = r.PostForm.Encode()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok_1","token_type":"bearer","expires_in":5183944}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	token, err := client.ExchangeCode(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if token != "tok_1" {
		t.Errorf("token = %q, want tok_1", token)
	}
	for _, want := range []string{"client_id=app-id", "client_secret=app-secret", "code=abc123"} {
		if !strings.Contains(gotForm, want) {
			t.Errorf("form %q missing %q", gotForm, want)
		}
	}
}

func TestExchangeCodeMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ExchangeCode(context.Background(), "abc123")

	var exchangeErr *TokenExchangeError
	if !errors.As(err, &exchangeErr) {
		t.Fatalf("ExchangeCode() error = %v, want TokenExchangeError", err)
	}
}

func TestExchangeCodeGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"This authorization code has expired.","type":"OAuthException","code":100,"fbtrace_id":"AbCd"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ExchangeCode(context.Background(), "stale")

	var exchangeErr *TokenExchangeError
	if !errors.As(err, &exchangeErr) {
		t.Fatalf("ExchangeCode() error = %v, want TokenExchangeError", err)
	}
	var graphErr *GraphError
	if !errors.As(err, &graphErr) {
		t.Fatalf("error chain missing GraphError: %v", err)
	}
	if graphErr.Code != 100 || graphErr.Type != "OAuthException" {
		t.Errorf("GraphError = %+v, want code 100 OAuthException", graphErr)
	}
}

func TestDialogURL(t *testing.T) {
	client := NewClient("app-id", "app-secret", "https://fbai-app.example.com/auth/facebook/callback", nil)
	dialog := client.DialogURL("c3RhdGU")

	for _, want := range []string{
		"https://www.facebook.com/v19.0/dialog/oauth?",
		"client_id=app-id",
		"state=c3RhdGU",
		"response_type=code",
		"ads_management",
	} {
		if !strings.Contains(dialog, want) {
			t.Errorf("DialogURL() = %q, missing %q", dialog, want)
		}
	}
}
