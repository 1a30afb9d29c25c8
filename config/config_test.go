package config

import (
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/fbads_test")
	t.Setenv("FACEBOOK_APP_ID", "123456")
	t.Setenv("FACEBOOK_APP_SECRET", "shh")
	t.Setenv("FACEBOOK_REDIRECT_URI", "https://fbai-app.example.com/auth/facebook/callback")
	t.Setenv("APP_URL", "https://fbai-app.example.com/")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.App.URL != "https://fbai-app.example.com" {
		t.Errorf("App.URL = %q, want trailing slash trimmed", cfg.App.URL)
	}
	if len(cfg.App.AllowedOrigins) != 1 || cfg.App.AllowedOrigins[0] != "https://fbai-app.example.com" {
		t.Errorf("AllowedOrigins = %v, want [app url]", cfg.App.AllowedOrigins)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FACEBOOK_APP_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for missing FACEBOOK_APP_SECRET")
	}
}

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "single",
			raw:  "https://fbai-app.example.com",
			want: []string{"https://fbai-app.example.com"},
		},
		{
			name: "multiple with spaces and trailing slash",
			raw:  "https://a.example.com/, https://b.example.com",
			want: []string{"https://a.example.com", "https://b.example.com"},
		},
		{
			name: "empty entries dropped",
			raw:  ",https://a.example.com,,",
			want: []string{"https://a.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitOrigins(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("splitOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitOrigins(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}
