// Package spokegraph is the public API for embedding the spokegraph entity
// provisioner.
//
// Consumers import this package to construct and drive the resolution
// pipeline without forking it:
//
//	app, err := spokegraph.New(
//	    spokegraph.WithDataDir("/var/lib/spokegraph/acme-corp"),
//	    spokegraph.WithLogger(logger),
//	    spokegraph.WithClassifierOracle(myLLMOracle{}),
//	)
//	if err != nil { ... }
//	cluster, err := app.StageAndScoreExtraction(ctx, extracted, source, spokegraph.DefaultSpokeID)
//
// The import graph enforces a strict no-cycle rule: spokegraph (root)
// imports internal/*, but internal/* never imports spokegraph (root).
package spokegraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/spokegraph/provisioner/internal/classifier"
	"github.com/spokegraph/provisioner/internal/config"
	"github.com/spokegraph/provisioner/internal/gapanalysis"
	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/resolver"
	"github.com/spokegraph/provisioner/internal/staging"
	"github.com/spokegraph/provisioner/internal/store"
	"github.com/spokegraph/provisioner/internal/telemetry"
	"github.com/spokegraph/provisioner/internal/template"
)

// DefaultSpokeID names the spoke every tenant starts with.
const DefaultSpokeID = model.DefaultSpokeID

// App is a single tenant's provisioner: one entity/cluster/spoke store plus
// the collaborators (template registry, classifier oracle, rarity
// classifier) the resolution pipeline needs. Construct with New(), close
// with Close() if telemetry was initialized.
type App struct {
	cfg          config.Config
	tenant       *store.Tenant
	templates    *template.Registry
	oracle       classifier.Oracle
	rarity       *resolver.RarityClassifier
	otelShutdown telemetry.Shutdown
	logger       *slog.Logger
	version      string
}

// New opens (creating if absent) the tenant store rooted at the configured
// data directory, loads the template registry, and wires the classifier
// oracle and rarity classifier. It does not start any goroutines.
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.templateFlatFile != "" {
		cfg.TemplateFlatFile = o.templateFlatFile
	}
	if o.templateDir != "" {
		cfg.TemplateDir = o.templateDir
	}
	if o.classifierEndpoint != "" {
		cfg.ClassifierEndpoint = o.classifierEndpoint
		cfg.ClassifierAPIKey = o.classifierAPIKey
		cfg.ClassifierTimeout = o.classifierTimeout
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	logger.Info("spokegraph starting", "version", version, "data_dir", cfg.DataDir)

	otelShutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	tenant, err := store.OpenTenant(context.Background(), cfg.DataDir, logger)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("store: %w", err)
	}

	templates, err := template.Load(cfg.TemplateFlatFile, cfg.TemplateDir, logger)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("template registry: %w", err)
	}

	oracle := newClassifierOracle(o, cfg, logger)

	rarity := resolver.NewRarityClassifier()
	if len(o.rarityOverrides) > 0 {
		rarity = rarity.WithOverrides(o.rarityOverrides)
	}

	return &App{
		cfg:          cfg,
		tenant:       tenant,
		templates:    templates,
		oracle:       oracle,
		rarity:       rarity,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}, nil
}

// newClassifierOracle picks the explicit override, else the configured HTTP
// oracle, else falls back to classifier.Noop.
func newClassifierOracle(o resolvedOptions, cfg config.Config, logger *slog.Logger) classifier.Oracle {
	if o.classifierOracle != nil {
		return o.classifierOracle
	}
	oracle, err := classifier.NewHTTPOracle(cfg.ClassifierEndpoint, cfg.ClassifierAPIKey, cfg.ClassifierTimeout)
	if err != nil {
		logger.Info("classifier oracle: disabled, using signal-based classification only")
		return classifier.Noop{}
	}
	logger.Info("classifier oracle: http", "endpoint", cfg.ClassifierEndpoint)
	return oracle
}

// Close shuts down telemetry. Safe to call on a zero-value *App only after
// a successful New.
func (a *App) Close(ctx context.Context) error {
	if a.otelShutdown == nil {
		return nil
	}
	return a.otelShutdown(ctx)
}

// Tenant exposes the underlying file-backed stores for callers that need
// direct access (e.g. custom CLI subcommands).
func (a *App) Tenant() *store.Tenant { return a.tenant }

// StageAndScoreExtraction runs the staging engine (ST) over an extracted
// entity proposal and immediately scores the resulting cluster against
// spokeID's existing entities (spec §4.2, §4.4-4.5).
func (a *App) StageAndScoreExtraction(ctx context.Context, extracted model.ExtractedEntity, source model.Source, spokeID string) (*model.SignalCluster, error) {
	cluster, err := staging.Stage(ctx, a.tenant.Clusters, extracted, source)
	if err != nil {
		return nil, err
	}
	return resolver.ScoreCluster(ctx, a.tenant, cluster.ClusterID, a.rarity, spokeID)
}

// ResolveCluster executes a reviewer action against a scored cluster (spec
// §4.5.3). Pass DefaultSpokeID absent a narrower spoke context.
func (a *App) ResolveCluster(ctx context.Context, clusterID string, action resolver.Action, agentID, spokeID string) (*resolver.Outcome, error) {
	return resolver.ResolveCluster(ctx, a.tenant, clusterID, action, agentID, spokeID)
}

// ResolveConflict moves an entity's active conflict into resolved_conflicts
// per the reviewer's choice (spec §4.5.3 conflict resolution contract).
func (a *App) ResolveConflict(ctx context.Context, entityID, conflictID string, choice resolver.ConflictChoice, resolvedBy string) (*model.Conflict, error) {
	return resolver.ResolveConflict(ctx, a.tenant.Entities, entityID, conflictID, choice, resolvedBy)
}

// GetReviewQueue returns every unresolved cluster awaiting a reviewer
// decision (spec §6 "Resolver").
func (a *App) GetReviewQueue(ctx context.Context) ([]*model.SignalCluster, error) {
	return a.tenant.Clusters.ReviewQueue(ctx)
}

// CreateSpoke registers a new spoke partition.
func (a *App) CreateSpoke(ctx context.Context, s *model.Spoke) error {
	return a.tenant.Spokes.Create(ctx, s)
}

// GetSpoke returns a spoke by ID.
func (a *App) GetSpoke(ctx context.Context, id string) (*model.Spoke, error) {
	return a.tenant.Spokes.Get(ctx, id)
}

// ListSpokes returns every spoke in the tenant.
func (a *App) ListSpokes(ctx context.Context) ([]*model.Spoke, error) {
	return a.tenant.Spokes.List(ctx)
}

// UpdateSpoke applies fn to the spoke identified by id and persists it.
func (a *App) UpdateSpoke(ctx context.Context, id string, fn func(s *model.Spoke) error) (*model.Spoke, error) {
	return a.tenant.Spokes.Update(ctx, id, fn)
}

// SetCenteredEntity sets spoke id's centered (self) entity.
func (a *App) SetCenteredEntity(ctx context.Context, id, entityID, entityName string) (*model.Spoke, error) {
	return a.tenant.Spokes.SetCenteredEntity(ctx, id, entityID, entityName)
}

// DeleteSpoke removes a non-default spoke. force bypasses the
// non-empty-spoke guard.
func (a *App) DeleteSpoke(ctx context.Context, id string, force bool) error {
	return a.tenant.Spokes.Delete(ctx, id, func(spokeID string) (bool, error) {
		entities, err := a.tenant.Entities.ListBySpoke(ctx, spokeID)
		if err != nil {
			return false, err
		}
		return len(entities) > 0, nil
	}, force)
}

// AnalyzeGaps scores spokeID's entity graph against templateType's document,
// field, entity, and relationship requirements (spec §4.8, §4.9).
func (a *App) AnalyzeGaps(ctx context.Context, spokeID, templateType string, tierAdjustments map[string]string) (*gapanalysis.Scorecard, error) {
	return gapanalysis.AnalyzeGaps(ctx, a.tenant, a.templates, spokeID, templateType, tierAdjustments, a.oracle)
}

// Templates exposes the template registry for callers that need to upload
// or list custom templates directly.
func (a *App) Templates() *template.Registry { return a.templates }
