package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/store"
)

// ConflictChoice is a reviewer's decision on an active conflict (spec §4.5.3
// / §6 resolveConflict contract).
type ConflictChoice string

const (
	ChoiceKeepA    ConflictChoice = "keep_a"
	ChoiceKeepB    ConflictChoice = "keep_b"
	ChoiceKeepBoth ConflictChoice = "keep_both"
)

// ErrUnknownChoice is returned for a choice outside {keep_a, keep_b, keep_both}.
var ErrUnknownChoice = fmt.Errorf("resolver: unknown conflict choice")

// ResolveConflict moves an entity's active conflict conflictID into
// resolved_conflicts, applying choice. keep_a/keep_b additionally overwrite
// the disputed attribute's value and captured_date with the winning side.
func ResolveConflict(ctx context.Context, entities *store.EntityStore, entityID, conflictID string, choice ConflictChoice, resolvedBy string) (*model.Conflict, error) {
	if choice != ChoiceKeepA && choice != ChoiceKeepB && choice != ChoiceKeepBoth {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}

	var resolved model.Conflict
	err := entities.WithLock(ctx, entityID, func(e *model.Entity) error {
		idx := -1
		for i, c := range e.Conflicts {
			if c.ConflictID == conflictID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("conflict not found: %s", conflictID)
		}
		c := e.Conflicts[idx]
		now := time.Now().UTC()

		switch choice {
		case ChoiceKeepA:
			c.Resolution = &model.ConflictResolution{ResolvedAt: now, ResolvedBy: resolvedBy, Winner: model.WinnerA, WinningValue: c.ValueA, Reason: "reviewer kept value A"}
			applyWinningValue(e, c.Attribute, c.ValueA, c.DateA)
		case ChoiceKeepB:
			c.Resolution = &model.ConflictResolution{ResolvedAt: now, ResolvedBy: resolvedBy, Winner: model.WinnerB, WinningValue: c.ValueB, Reason: "reviewer kept value B"}
			applyWinningValue(e, c.Attribute, c.ValueB, c.DateB)
		case ChoiceKeepBoth:
			c.Resolution = &model.ConflictResolution{ResolvedAt: now, ResolvedBy: resolvedBy, Winner: model.WinnerBoth, Reason: "reviewer confirmed both values stand"}
		}
		c.AutoResolved = false

		e.Conflicts = append(e.Conflicts[:idx], e.Conflicts[idx+1:]...)
		e.ResolvedConflicts = append(e.ResolvedConflicts, c)
		resolved = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolver: resolve conflict %s on %s: %w", conflictID, entityID, err)
	}
	return &resolved, nil
}

func applyWinningValue(e *model.Entity, attrKey, value string, date time.Time) {
	a := e.FindAttribute(attrKey)
	if a == nil {
		return
	}
	a.Value = value
	if !date.IsZero() {
		a.TimeDecay.CapturedDate = date
	}
}
