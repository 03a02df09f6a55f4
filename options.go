package spokegraph

import (
	"log/slog"
	"time"
)

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	dataDir            string
	logger             *slog.Logger
	version            string
	classifierOracle   ClassifierOracle
	rarityOverrides    map[string]RarityTier
	templateFlatFile   string
	templateDir        string
	classifierEndpoint string
	classifierAPIKey   string
	classifierTimeout  time.Duration
}

// WithDataDir overrides the tenant-store root directory from config
// (SPOKEGRAPH_DATA_DIR env var).
func WithDataDir(dir string) Option {
	return func(o *resolvedOptions) { o.dataDir = dir }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithClassifierOracle replaces the auto-configured document-classification
// oracle used by AnalyzeGaps. Signal-based classification always runs
// alongside it; an oracle failure never fails the analysis.
func WithClassifierOracle(oracle ClassifierOracle) Option {
	return func(o *resolvedOptions) { o.classifierOracle = oracle }
}

// WithRarityOverrides replaces entries in the global name-rarity tables used
// by the resolver's ambiguous-match threshold (spec §4.5.1 step 3, §9 Open
// Questions decision 3). The overrides apply to every spoke; a spoke's
// TierAdjustments play no part in name rarity.
func WithRarityOverrides(overrides map[string]RarityTier) Option {
	return func(o *resolvedOptions) { o.rarityOverrides = overrides }
}

// WithTemplateSources overrides the flat-file and directory paths the
// template registry loads from (SPOKEGRAPH_TEMPLATE_FILE /
// SPOKEGRAPH_TEMPLATE_DIR env vars). Either may be empty.
func WithTemplateSources(flatFile, dir string) Option {
	return func(o *resolvedOptions) {
		o.templateFlatFile = flatFile
		o.templateDir = dir
	}
}

// WithClassifierEndpoint configures the built-in HTTP classifier oracle
// (SPOKEGRAPH_CLASSIFIER_ENDPOINT / SPOKEGRAPH_CLASSIFIER_API_KEY /
// SPOKEGRAPH_CLASSIFIER_TIMEOUT env vars). Ignored if WithClassifierOracle
// is also given.
func WithClassifierEndpoint(endpoint, apiKey string, timeout time.Duration) Option {
	return func(o *resolvedOptions) {
		o.classifierEndpoint = endpoint
		o.classifierAPIKey = apiKey
		o.classifierTimeout = timeout
	}
}
