package config

import (
	"reflect"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Prof@X.com ", "prof@x.com"},
		{"b@x.com", "b@x.com"},
		{"\tA@B.C\n", "a@b.c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("ADMIN_EMAILS", " Root@Example.com ,, ops@example.com")
	t.Setenv("INVITE_TTL_HOURS", "24")
	t.Setenv("APP_BASE_URL", "https://autazul.app/")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("TRUST_PROXY", "true")

	cfg := Load()
	if cfg.DatabaseDriver != "sqlite3" {
		t.Fatalf("driver = %q", cfg.DatabaseDriver)
	}
	want := []string{"root@example.com", "ops@example.com"}
	if !reflect.DeepEqual(cfg.AdminEmails, want) {
		t.Fatalf("admin emails = %v, want %v", cfg.AdminEmails, want)
	}
	if cfg.InviteTTLHours != 24 {
		t.Fatalf("invite ttl = %d", cfg.InviteTTLHours)
	}
	if cfg.AppBaseURL != "https://autazul.app" {
		t.Fatalf("base url = %q", cfg.AppBaseURL)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Fatalf("rate limit fallback = %d", cfg.RateLimitPerMinute)
	}
	if !cfg.TrustProxy {
		t.Fatal("TRUST_PROXY not applied")
	}
	if cfg.Storage.Driver != "local" {
		t.Fatalf("storage driver = %q", cfg.Storage.Driver)
	}
}

func TestLoadPanicsWithoutSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing JWT_SECRET")
		}
	}()
	Load()
}
