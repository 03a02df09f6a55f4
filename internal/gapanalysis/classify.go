package gapanalysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spokegraph/provisioner/internal/classifier"
	"github.com/spokegraph/provisioner/internal/model"
)

// maxSnippetsPerDoc and maxSnippetLen bound how much observation text is
// assembled per source document (spec §4.8 step 1).
const (
	maxSnippetsPerDoc = 10
	maxSnippetLen     = 200
)

// docIndexEntry is the per-filename slice of the assembled scope: which
// entities reference the document, and a bounded sample of its text.
type docIndexEntry struct {
	EntityIDs []string
	Snippets  []string
}

// assembleScope builds the per-filename index (spec §4.8 step 1) from every
// entity's source_ref, provenance source documents, and observation
// sources.
func assembleScope(entities []*model.Entity) map[string]*docIndexEntry {
	idx := make(map[string]*docIndexEntry)

	entry := func(filename string) *docIndexEntry {
		if filename == "" {
			return nil
		}
		e, ok := idx[filename]
		if !ok {
			e = &docIndexEntry{}
			idx[filename] = e
		}
		return e
	}
	addEntity := func(e *docIndexEntry, entityID string) {
		if e == nil {
			return
		}
		for _, id := range e.EntityIDs {
			if id == entityID {
				return
			}
		}
		e.EntityIDs = append(e.EntityIDs, entityID)
	}

	for _, ent := range entities {
		if e := entry(ent.SourceRef); e != nil {
			addEntity(e, ent.EntityID)
		}
		for _, doc := range ent.Provenance.SourceDocuments {
			if e := entry(doc); e != nil {
				addEntity(e, ent.EntityID)
			}
		}
		for _, obs := range ent.Observations {
			e := entry(obs.Source)
			if e == nil {
				continue
			}
			addEntity(e, ent.EntityID)
			if len(e.Snippets) >= maxSnippetsPerDoc {
				continue
			}
			text := obs.Text
			if len(text) > maxSnippetLen {
				text = text[:maxSnippetLen]
			}
			e.Snippets = append(e.Snippets, text)
		}
	}
	return idx
}

// sourceFilenames returns the sorted filename list of the assembled scope.
func sourceFilenames(idx map[string]*docIndexEntry) []string {
	out := make([]string, 0, len(idx))
	for fn := range idx {
		out = append(out, fn)
	}
	sort.Strings(out)
	return out
}

// classifyDocs runs the two-track document classification (spec §4.8 steps
// 2-3): deterministic signal-based matching, fanned out one goroutine per
// source document (bounded), plus an optional oracle's opinion. Returns the
// per-filename assigned document-type id (signal-based wins on conflict)
// and the set of document-type ids judged present by either track.
func classifyDocs(ctx context.Context, docTypes []model.DocumentType, idx map[string]*docIndexEntry, oracle classifier.Oracle) (assigned map[string]string, present map[string]bool, err error) {
	assigned = make(map[string]string)
	present = make(map[string]bool)

	filenames := sourceFilenames(idx)
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, fn := range filenames {
		fn := fn
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			best, ok := bestSignalMatch(fn, idx[fn], docTypes)
			if !ok {
				return nil
			}
			mu.Lock()
			assigned[fn] = best
			present[best] = true
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("gapanalysis: signal classification fan-out: %w", err)
	}

	if oracle == nil {
		oracle = classifier.Noop{}
	}
	snippets := make(map[string][]string, len(idx))
	for fn, e := range idx {
		snippets[fn] = e.Snippets
	}
	result, oracleErr := oracle.Classify(ctx, snippets)
	if oracleErr != nil {
		// Degrade to signal-based classification only (spec §5 "Suspension
		// points": an oracle failure must never fail the whole analysis).
		return assigned, present, nil
	}
	for _, d := range result.Classifications {
		for _, item := range d.DetectedItems {
			present[item] = true
			if _, taken := assigned[d.Filename]; !taken {
				assigned[d.Filename] = item
			}
		}
	}
	return assigned, present, nil
}

// bestSignalMatch picks the document type whose classification_signals have
// the highest fractional coverage in filename+snippets, requiring at least
// one signal match (spec §4.8 step 2). Ties favor the earlier document type
// in template order, for determinism.
func bestSignalMatch(filename string, entry *docIndexEntry, docTypes []model.DocumentType) (string, bool) {
	if entry == nil {
		return "", false
	}
	text := strings.ToLower(filename + " " + strings.Join(entry.Snippets, " "))

	bestCoverage := 0.0
	bestTypeID := ""
	found := false
	for _, dt := range docTypes {
		if len(dt.ClassificationSignals) == 0 {
			continue
		}
		matches := 0
		for _, sig := range dt.ClassificationSignals {
			if strings.Contains(text, strings.ToLower(sig)) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		coverage := float64(matches) / float64(len(dt.ClassificationSignals))
		if coverage > bestCoverage {
			bestCoverage = coverage
			bestTypeID = dt.TypeID
			found = true
		}
	}
	return bestTypeID, found
}
