// Package staging implements the staging engine (ST): transforming an
// extracted entity proposal into a signal cluster with per-signal projected
// confidences. See spec §4.2.
package staging

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spokegraph/provisioner/internal/confidence"
	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/store"
)

// ErrEmptyEntity is returned when the extracted entity has no usable name
// (spec §8 boundary behavior: "Empty extracted entity (no name) is rejected
// at staging").
var ErrEmptyEntity = fmt.Errorf("staging: extracted entity has no name")

// handleURLPatterns map a social platform to the regex matching its profile
// URLs, used to recover handles from attribute values, bios, and raw text
// (spec §4.2).
var handleURLPatterns = map[string]*regexp.Regexp{
	"x":         regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/([A-Za-z0-9_]+)`),
	"instagram": regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/([A-Za-z0-9_.]+)`),
	"linkedin":  regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/(?:in|company)/([A-Za-z0-9\-_.]+)`),
}

// titleKeys, orgKeys, locationKeys, bioKeys, skillKeys, educationKeys name
// the attribute keys recognized as each signal type.
var (
	titleKeys     = map[string]bool{"title": true, "role": true, "current_role": true, "headline": true}
	orgKeys       = map[string]bool{"organization": true, "company": true, "current_company": true}
	locationKeys  = map[string]bool{"location": true, "current_location": true}
	bioKeys       = map[string]bool{"bio": true, "x_bio": true, "instagram_bio": true}
	skillKeys     = map[string]bool{"skill": true, "skills": true}
	educationKeys = map[string]bool{"education": true}
	handleKeys    = map[string]string{ // attribute key -> platform
		"x_handle":         "x",
		"twitter_handle":   "x",
		"instagram_handle": "instagram",
		"linkedin_handle":  "linkedin",
		"linkedin_url":     "linkedin",
	}
)

// Stage allocates a cluster ID, extracts signals from extracted, computes
// per-signal projected confidences, and writes the cluster to the cluster
// store in state "unresolved".
func Stage(ctx context.Context, clusters *store.ClusterStore, extracted model.ExtractedEntity, source model.Source) (*model.SignalCluster, error) {
	names := extractNames(extracted)
	if len(names) == 0 {
		return nil, ErrEmptyEntity
	}

	now := source.ExtractedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	signals := model.Signals{
		Names:         names,
		Handles:       extractHandles(extracted),
		Titles:        dedup(extractByKeySet(extracted, titleKeys, nil)),
		Organizations: dedup(extractByKeySet(extracted, orgKeys, nil)),
		Locations:     dedup(extractByKeySet(extracted, locationKeys, nil)),
		Bios:          dedup(extractBios(extracted)),
		Skills:        dedup(extractByKeySet(extracted, skillKeys, careerSkills(extracted))),
		Education:     dedup(extractByKeySet(extracted, educationKeys, careerEducation(extracted))),
		RawText:       rawText(extracted),
	}

	sourceWeight := confidence.SourceWeight(source.Type)
	if source.Weight == 0 {
		source.Weight = sourceWeight
	}

	confident := buildConfidentSignals(signals, extracted, sourceWeight, now)

	cluster := &model.SignalCluster{
		ClusterID:        "SIG-" + randomHex12(),
		EntityType:       extracted.EntityType,
		CreatedAt:        now,
		UpdatedAt:        now,
		State:            model.ClusterUnresolved,
		Source:           source,
		Signals:          signals,
		ConfidentSignals: confident,
		SignalConfidence: signalConfidence(confident),
		EntityData:       extracted,
	}

	if err := clusters.Write(ctx, cluster); err != nil {
		return nil, fmt.Errorf("staging: write cluster: %w", err)
	}
	return cluster, nil
}

func randomHex12() string {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	return hex[:12]
}

func extractNames(e model.ExtractedEntity) []string {
	ent := model.Entity{EntityType: e.EntityType, Name: e.Name}
	return dedup(ent.AllNames())
}

func extractByKeySet(e model.ExtractedEntity, keys map[string]bool, extra []string) []string {
	var out []string
	for _, a := range e.Attributes {
		if keys[a.Key] {
			out = append(out, a.Value)
		}
	}
	out = append(out, extra...)
	return out
}

func extractBios(e model.ExtractedEntity) []string {
	out := extractByKeySet(e, bioKeys, nil)
	if e.Summary != nil && e.Summary.Value != "" {
		out = append(out, e.Summary.Value)
	}
	return out
}

func careerSkills(e model.ExtractedEntity) []string {
	if e.CareerLite == nil {
		return nil
	}
	return e.CareerLite.Skills
}

func careerEducation(e model.ExtractedEntity) []string {
	if e.CareerLite == nil {
		return nil
	}
	return e.CareerLite.Education
}

func extractHandles(e model.ExtractedEntity) model.Handles {
	var h model.Handles
	setHandle := func(platform, value string) {
		switch platform {
		case "x":
			if h.X == "" {
				h.X = value
			}
		case "instagram":
			if h.Instagram == "" {
				h.Instagram = value
			}
		case "linkedin":
			if h.LinkedIn == "" {
				h.LinkedIn = value
			}
		}
	}

	// Direct handle attributes.
	for _, a := range e.Attributes {
		if platform, ok := handleKeys[a.Key]; ok {
			setHandle(platform, a.Value)
			continue
		}
		for platform, re := range handleURLPatterns {
			if m := re.FindStringSubmatch(a.Value); m != nil {
				setHandle(platform, m[1])
			}
		}
	}
	// URLs embedded in observation text and bios.
	texts := make([]string, 0, len(e.Observations)+1)
	for _, o := range e.Observations {
		texts = append(texts, o.Text)
	}
	if e.Summary != nil {
		texts = append(texts, e.Summary.Value)
	}
	for _, t := range texts {
		for platform, re := range handleURLPatterns {
			if m := re.FindStringSubmatch(t); m != nil {
				setHandle(platform, m[1])
			}
		}
	}
	return h
}

func rawText(e model.ExtractedEntity) string {
	var parts []string
	for _, o := range e.Observations {
		parts = append(parts, o.Text)
	}
	return strings.Join(parts, "\n")
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
