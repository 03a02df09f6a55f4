// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Data directory. Every tenant store is rooted under here, one
	// subdirectory per tenant (spec §6 "Persistent layout (per tenant)").
	DataDir string

	// Template registry sources (internal/template.Load). Either may be empty.
	TemplateFlatFile string
	TemplateDir      string

	// Classifier oracle settings (internal/classifier.HTTPOracle). The
	// oracle is disabled (falls back to classifier.Noop) when Endpoint or
	// APIKey is empty.
	ClassifierEndpoint string
	ClassifierAPIKey   string
	ClassifierTimeout  time.Duration

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool // Use HTTP instead of HTTPS for OTEL exporter (default: false).
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if any environment variable contains an unparseable value.
// Missing variables use sensible defaults; only malformed values are rejected.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		DataDir:            envStr("SPOKEGRAPH_DATA_DIR", "./data"),
		TemplateFlatFile:   envStr("SPOKEGRAPH_TEMPLATE_FILE", ""),
		TemplateDir:        envStr("SPOKEGRAPH_TEMPLATE_DIR", ""),
		ClassifierEndpoint: envStr("SPOKEGRAPH_CLASSIFIER_ENDPOINT", ""),
		ClassifierAPIKey:   envStr("SPOKEGRAPH_CLASSIFIER_API_KEY", ""),
		OTELEndpoint:       envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:        envStr("OTEL_SERVICE_NAME", "spokegraph-provisioner"),
		LogLevel:           envStr("SPOKEGRAPH_LOG_LEVEL", "info"),
	}

	// Boolean fields.
	cfg.OTELInsecure, errs = collectBool(errs, "OTEL_EXPORTER_OTLP_INSECURE", false)

	// Duration fields.
	cfg.ClassifierTimeout, errs = collectDuration(errs, "SPOKEGRAPH_CLASSIFIER_TIMEOUT", 20*time.Second)

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return Config{}, fmt.Errorf("config: invalid environment variables:\n  %s", strings.Join(msgs, "\n  "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// collectBool parses a bool env var, appending any error to the accumulator.
func collectBool(errs []error, key string, fallback bool) (bool, []error) {
	v, err := envBool(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// collectDuration parses a duration env var, appending any error to the accumulator.
func collectDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	v, err := envDuration(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// Validate checks that required configuration is present and sane.
func (c Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("config: SPOKEGRAPH_DATA_DIR is required"))
	}
	if c.ClassifierTimeout <= 0 {
		errs = append(errs, errors.New("config: SPOKEGRAPH_CLASSIFIER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
