package spokegraph

import (
	"context"

	"github.com/spokegraph/provisioner/internal/classifier"
)

// ClassifierOracle is the public extension point for the gap analyzer's
// optional document-classification second opinion. When provided via
// WithClassifierOracle, it replaces the auto-configured HTTP oracle (or the
// no-op fallback). Signal-based classification always runs regardless.
type ClassifierOracle interface {
	Classify(ctx context.Context, snippets map[string][]string) (classifier.Result, error)
}
