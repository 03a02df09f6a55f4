package config

import (
	"testing"
	"time"
)

func TestEnvBoolValid(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	v, err := envBool("TEST_BOOL", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("expected true")
	}
}

func TestEnvBoolInvalid(t *testing.T) {
	t.Setenv("TEST_BOOL_BAD", "maybe")
	_, err := envBool("TEST_BOOL_BAD", false)
	if err == nil {
		t.Fatal("expected error for non-boolean value, got nil")
	}
	if got := err.Error(); got != `TEST_BOOL_BAD="maybe" is not a valid boolean` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestEnvDurationValid(t *testing.T) {
	t.Setenv("TEST_DUR", "5s")
	v, err := envDuration("TEST_DUR", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Seconds() != 5 {
		t.Fatalf("expected 5s, got %s", v)
	}
}

func TestEnvDurationInvalid(t *testing.T) {
	t.Setenv("TEST_DUR_BAD", "five-seconds")
	_, err := envDuration("TEST_DUR_BAD", 0)
	if err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
	if got := err.Error(); got != `TEST_DUR_BAD="five-seconds" is not a valid duration` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestLoadFailsOnInvalidTimeout(t *testing.T) {
	t.Setenv("SPOKEGRAPH_CLASSIFIER_TIMEOUT", "not-a-duration")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail with invalid SPOKEGRAPH_CLASSIFIER_TIMEOUT")
	}
	if got := err.Error(); !contains(got, "SPOKEGRAPH_CLASSIFIER_TIMEOUT") || !contains(got, "not-a-duration") {
		t.Fatalf("error should mention SPOKEGRAPH_CLASSIFIER_TIMEOUT and value, got: %s", got)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && searchSubstring(s, substr)
}

func searchSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestLoadSucceedsWithDefaults(t *testing.T) {
	// With no env vars set, Load should succeed using all defaults.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed with defaults, got: %v", err)
	}
	if cfg.DataDir != "./data" {
		t.Fatalf("expected default data dir './data', got %q", cfg.DataDir)
	}
	if cfg.ClassifierTimeout != 20*time.Second {
		t.Fatalf("expected default classifier timeout 20s, got %s", cfg.ClassifierTimeout)
	}
	if cfg.ClassifierEndpoint != "" {
		t.Fatal("expected classifier endpoint unset by default")
	}
}

func TestLoad_OTELEndpointParsing(t *testing.T) {
	endpoint := "https://otel.example.com:4317"
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", endpoint)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed, got: %v", err)
	}
	if cfg.OTELEndpoint != endpoint {
		t.Fatalf("expected OTELEndpoint %q, got %q", endpoint, cfg.OTELEndpoint)
	}
}

func TestLoad_AllEnvVarsHonored(t *testing.T) {
	t.Setenv("SPOKEGRAPH_DATA_DIR", "/var/lib/spokegraph")
	t.Setenv("SPOKEGRAPH_TEMPLATE_FILE", "/etc/spokegraph/templates.json")
	t.Setenv("SPOKEGRAPH_TEMPLATE_DIR", "/etc/spokegraph/templates.d")
	t.Setenv("SPOKEGRAPH_CLASSIFIER_ENDPOINT", "https://classify.example.com")
	t.Setenv("SPOKEGRAPH_CLASSIFIER_API_KEY", "test-key")
	t.Setenv("SPOKEGRAPH_CLASSIFIER_TIMEOUT", "5s")
	t.Setenv("OTEL_SERVICE_NAME", "spokegraph-test")
	t.Setenv("SPOKEGRAPH_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed, got: %v", err)
	}

	if cfg.DataDir != "/var/lib/spokegraph" {
		t.Fatalf("expected DataDir %q, got %q", "/var/lib/spokegraph", cfg.DataDir)
	}
	if cfg.TemplateFlatFile != "/etc/spokegraph/templates.json" {
		t.Fatalf("expected TemplateFlatFile %q, got %q", "/etc/spokegraph/templates.json", cfg.TemplateFlatFile)
	}
	if cfg.TemplateDir != "/etc/spokegraph/templates.d" {
		t.Fatalf("expected TemplateDir %q, got %q", "/etc/spokegraph/templates.d", cfg.TemplateDir)
	}
	if cfg.ClassifierEndpoint != "https://classify.example.com" {
		t.Fatalf("expected ClassifierEndpoint %q, got %q", "https://classify.example.com", cfg.ClassifierEndpoint)
	}
	if cfg.ClassifierAPIKey != "test-key" {
		t.Fatalf("expected ClassifierAPIKey %q, got %q", "test-key", cfg.ClassifierAPIKey)
	}
	if cfg.ClassifierTimeout != 5*time.Second {
		t.Fatalf("expected ClassifierTimeout 5s, got %s", cfg.ClassifierTimeout)
	}
	if cfg.ServiceName != "spokegraph-test" {
		t.Fatalf("expected ServiceName %q, got %q", "spokegraph-test", cfg.ServiceName)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected LogLevel %q, got %q", "debug", cfg.LogLevel)
	}
}
