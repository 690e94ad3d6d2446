package config

import "testing"

func TestLoadFailsWithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected Load() to fail without DATABASE_URL")
	}
}

func TestLoadFailsOnZeroWSConnections(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("WS_CONNECTIONS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected Load() to fail when WS_CONNECTIONS is 0")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("WS_CONNECTIONS", "")
	t.Setenv("PORT", "")
	t.Setenv("MARKETS_INTERVAL_MS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port: %q", cfg.Server.Port)
	}
	if cfg.Sync.WSConnections != 4 {
		t.Fatalf("unexpected default WSConnections: %d", cfg.Sync.WSConnections)
	}
	if cfg.Sync.MarketsInterval.Seconds() != 300 {
		t.Fatalf("unexpected default MarketsInterval: %v", cfg.Sync.MarketsInterval)
	}
	if cfg.Polymarket.HTTPTimeout.Seconds() != 30 {
		t.Fatalf("unexpected default HTTPTimeout: %v", cfg.Polymarket.HTTPTimeout)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("PORT", "9090")
	t.Setenv("CLOB_AUDIT_CONCURRENCY", "12")
	t.Setenv("ENABLE_TRADES_SYNC", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %q", cfg.Server.Port)
	}
	if cfg.Sync.ClobAuditConcurrency != 12 {
		t.Fatalf("unexpected ClobAuditConcurrency: %d", cfg.Sync.ClobAuditConcurrency)
	}
	if cfg.Sync.EnableTrades {
		t.Fatal("expected EnableTrades to be false")
	}
}

func TestSanitizeCredentialStripsQuotesAndWhitespace(t *testing.T) {
	cases := map[string]string{
		`"abc123"`:  "abc123",
		"  abc123 ": "abc123",
		"abc123":    "abc123",
		"":          "",
	}
	for input, want := range cases {
		if got := sanitizeCredential(input); got != want {
			t.Fatalf("sanitizeCredential(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestGetEnvAsIntFallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("SOME_INT_VAR", "not-a-number")
	if got := getEnvAsInt("SOME_INT_VAR", 42); got != 42 {
		t.Fatalf("getEnvAsInt with invalid value = %d, want fallback 42", got)
	}
}

func TestGetEnvAsBoolFallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("SOME_BOOL_VAR", "not-a-bool")
	if got := getEnvAsBool("SOME_BOOL_VAR", true); got != true {
		t.Fatalf("getEnvAsBool with invalid value = %v, want fallback true", got)
	}
}
