// Package classifier defines the fallible, cancellable document-classifier
// oracle collaborator (spec §4.8 step 2, §9 "External LLM calls"). The gap
// analyzer always runs its own deterministic signal-based classification;
// an Oracle is an optional second opinion that never blocks a result.
package classifier

import (
	"context"
	"errors"
)

// Detection is one classifier-reported filename → document-type guess.
type Detection struct {
	Filename      string  `json:"filename"`
	DetectedItems []string `json:"detected_items"`
	Confidence    float64 `json:"confidence"`
}

// Result is the oracle's full response. Unclassified lists filenames the
// oracle looked at but could not confidently place.
type Result struct {
	Classifications []Detection `json:"classifications"`
	Unclassified    []string    `json:"unclassified"`
}

// Oracle classifies a set of filenames (with accompanying text snippets)
// into document types. Implementations may call out to an LLM; callers must
// treat every call as fallible and cancellable and degrade to signal-based
// classification on error or ctx cancellation (spec §5 "Suspension points").
type Oracle interface {
	Classify(ctx context.Context, snippets map[string][]string) (Result, error)
}

// Noop is an Oracle that never classifies anything, used when no LLM
// collaborator is configured. AnalyzeGaps falls back entirely to its
// signal-based track, which spec §9 requires to "produce a useful result
// when the oracle returns empty".
type Noop struct{}

// Classify always returns an empty Result and no error.
func (Noop) Classify(context.Context, map[string][]string) (Result, error) {
	return Result{}, nil
}

// ErrNoOracle signals that no real classifier is configured. Callers treat
// this as "no LLM opinion available", not a transient failure.
var ErrNoOracle = errors.New("classifier: no oracle configured (noop)")

