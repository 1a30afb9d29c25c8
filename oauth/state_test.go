package oauth

import (
	"encoding/base64"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	state := NewState("demo.myshopify.com")
	if state.Nonce == "" {
		t.Error("NewState() should set a nonce")
	}
	if !state.Popup {
		t.Error("NewState() should mark the popup flow")
	}

	encoded, err := state.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := DecodeState(encoded)
	if err != nil {
		t.Fatalf("DecodeState() error = %v", err)
	}
	if decoded.Shop != "demo.myshopify.com" {
		t.Errorf("Shop = %q, want demo.myshopify.com", decoded.Shop)
	}
	if decoded.Nonce != state.Nonce {
		t.Errorf("Nonce = %q, want %q", decoded.Nonce, state.Nonce)
	}
}

func TestDecodeStateAlternateEncodings(t *testing.T) {
	payload := []byte(`{"shop":"demo.myshopify.com"}`)

	tests := []struct {
		name string
		raw  string
	}{
		{"std", base64.StdEncoding.EncodeToString(payload)},
		{"raw std", base64.RawStdEncoding.EncodeToString(payload)},
		{"url", base64.URLEncoding.EncodeToString(payload)},
		{"raw url", base64.RawURLEncoding.EncodeToString(payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := DecodeState(tt.raw)
			if err != nil {
				t.Fatalf("DecodeState(%q) error = %v", tt.raw, err)
			}
			if state.Shop != "demo.myshopify.com" {
				t.Errorf("Shop = %q, want demo.myshopify.com", state.Shop)
			}
		})
	}
}

func TestDecodeStateFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64!!!"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("plain text"))},
		{"missing shop", base64.StdEncoding.EncodeToString([]byte(`{"popup":true}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeState(tt.raw); err == nil {
				t.Errorf("DecodeState(%q) expected error", tt.raw)
			}
		})
	}
}
