// Command provisionctl is a thin CLI driving the spokegraph provisioner's
// programmatic surface (spec §6) against a file-backed tenant directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/spokegraph/provisioner"
	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/resolver"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	level := parseLogLevel(os.Getenv("SPOKEGRAPH_LOG_LEVEL"))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		return 2
	}

	app, err := spokegraph.New(spokegraph.WithLogger(logger), spokegraph.WithVersion(version))
	if err != nil {
		logger.Error("init failed", "error", err)
		return 1
	}
	defer func() { _ = app.Close(context.Background()) }()

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "stage":
		return cmdStage(ctx, app, args)
	case "resolve":
		return cmdResolve(ctx, app, args)
	case "resolve-conflict":
		return cmdResolveConflict(ctx, app, args)
	case "review-queue":
		return cmdReviewQueue(ctx, app)
	case "spoke":
		return cmdSpoke(ctx, app, args)
	case "analyze-gaps":
		return cmdAnalyzeGaps(ctx, app, args)
	default:
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `provisionctl <command> [flags]

Commands:
  stage            -spoke ID        stage+score an extracted entity read as JSON from stdin
  resolve          -cluster ID -action hold|skip|merge|create_new|confirm_merge [-agent ID] [-spoke ID]
  resolve-conflict -entity ID -conflict ID -choice keep_a|keep_b|keep_both [-by NAME]
  review-queue
  spoke create|get|update|list|set-centered|delete
  analyze-gaps     -spoke ID -template ID`)
}

func cmdStage(ctx context.Context, app *spokegraph.App, args []string) int {
	fs := flag.NewFlagSet("stage", flag.ExitOnError)
	spokeID := fs.String("spoke", spokegraph.DefaultSpokeID, "spoke id")
	_ = fs.Parse(args)

	var payload struct {
		Extracted model.ExtractedEntity `json:"extracted"`
		Source    model.Source          `json:"source"`
	}
	if err := json.NewDecoder(os.Stdin).Decode(&payload); err != nil {
		fmt.Fprintln(os.Stderr, "decode stdin:", err)
		return 1
	}
	cluster, err := app.StageAndScoreExtraction(ctx, payload.Extracted, payload.Source, *spokeID)
	return emit(cluster, err)
}

func cmdResolve(ctx context.Context, app *spokegraph.App, args []string) int {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	clusterID := fs.String("cluster", "", "cluster id")
	action := fs.String("action", "", "hold|skip|merge|create_new|confirm_merge")
	agentID := fs.String("agent", "cli", "agent id performing the resolution")
	spokeID := fs.String("spoke", spokegraph.DefaultSpokeID, "spoke id")
	_ = fs.Parse(args)

	outcome, err := app.ResolveCluster(ctx, *clusterID, resolver.Action(*action), *agentID, *spokeID)
	return emit(outcome, err)
}

func cmdResolveConflict(ctx context.Context, app *spokegraph.App, args []string) int {
	fs := flag.NewFlagSet("resolve-conflict", flag.ExitOnError)
	entityID := fs.String("entity", "", "entity id")
	conflictID := fs.String("conflict", "", "conflict id")
	choice := fs.String("choice", "", "keep_a|keep_b|keep_both")
	resolvedBy := fs.String("by", "cli", "reviewer name")
	_ = fs.Parse(args)

	conflict, err := app.ResolveConflict(ctx, *entityID, *conflictID, resolver.ConflictChoice(*choice), *resolvedBy)
	return emit(conflict, err)
}

func cmdReviewQueue(ctx context.Context, app *spokegraph.App) int {
	queue, err := app.GetReviewQueue(ctx)
	return emit(queue, err)
}

func cmdAnalyzeGaps(ctx context.Context, app *spokegraph.App, args []string) int {
	fs := flag.NewFlagSet("analyze-gaps", flag.ExitOnError)
	spokeID := fs.String("spoke", spokegraph.DefaultSpokeID, "spoke id")
	templateID := fs.String("template", "", "template type id")
	_ = fs.Parse(args)

	scorecard, err := app.AnalyzeGaps(ctx, *spokeID, *templateID, nil)
	return emit(scorecard, err)
}

func cmdSpoke(ctx context.Context, app *spokegraph.App, args []string) int {
	if len(args) < 1 {
		usage()
		return 2
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "create":
		fs := flag.NewFlagSet("spoke create", flag.ExitOnError)
		id := fs.String("id", "", "spoke id")
		name := fs.String("name", "", "spoke display name")
		_ = fs.Parse(rest)
		s := &model.Spoke{ID: *id, Name: *name}
		err := app.CreateSpoke(ctx, s)
		return emit(s, err)
	case "get":
		fs := flag.NewFlagSet("spoke get", flag.ExitOnError)
		id := fs.String("id", "", "spoke id")
		_ = fs.Parse(rest)
		s, err := app.GetSpoke(ctx, *id)
		return emit(s, err)
	case "update":
		fs := flag.NewFlagSet("spoke update", flag.ExitOnError)
		id := fs.String("id", "", "spoke id")
		name := fs.String("name", "", "new display name, if changing")
		description := fs.String("description", "", "new description, if changing")
		_ = fs.Parse(rest)
		s, err := app.UpdateSpoke(ctx, *id, func(s *model.Spoke) error {
			if *name != "" {
				s.Name = *name
			}
			if *description != "" {
				s.Description = *description
			}
			return nil
		})
		return emit(s, err)
	case "list":
		list, err := app.ListSpokes(ctx)
		return emit(list, err)
	case "set-centered":
		fs := flag.NewFlagSet("spoke set-centered", flag.ExitOnError)
		id := fs.String("id", "", "spoke id")
		entityID := fs.String("entity", "", "entity id")
		entityName := fs.String("entity-name", "", "entity display name")
		_ = fs.Parse(rest)
		s, err := app.SetCenteredEntity(ctx, *id, *entityID, *entityName)
		return emit(s, err)
	case "delete":
		fs := flag.NewFlagSet("spoke delete", flag.ExitOnError)
		id := fs.String("id", "", "spoke id")
		force := fs.Bool("force", false, "bypass non-empty-spoke guard")
		_ = fs.Parse(rest)
		err := app.DeleteSpoke(ctx, *id, *force)
		return emit(struct{ Deleted string }{*id}, err)
	default:
		usage()
		return 2
	}
}

func emit(v any, err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseLogLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
