package spokegraph

import (
	"github.com/spokegraph/provisioner/internal/gapanalysis"
	"github.com/spokegraph/provisioner/internal/model"
	"github.com/spokegraph/provisioner/internal/resolver"
)

// Entity is the public alias for internal/model.Entity.
type Entity = model.Entity

// SignalCluster is the public alias for internal/model.SignalCluster.
type SignalCluster = model.SignalCluster

// Spoke is the public alias for internal/model.Spoke.
type Spoke = model.Spoke

// Template is the public alias for internal/model.Template.
type Template = model.Template

// Conflict is the public alias for internal/model.Conflict.
type Conflict = model.Conflict

// ExtractedEntity is the public alias for internal/model.ExtractedEntity.
type ExtractedEntity = model.ExtractedEntity

// Source is the public alias for internal/model.Source.
type Source = model.Source

// Action is one of the five resolution actions a reviewer may take on a
// scored cluster: hold, skip, merge, create_new, confirm_merge.
type Action = resolver.Action

const (
	ActionHold         = resolver.ActionHold
	ActionSkip         = resolver.ActionSkip
	ActionMerge        = resolver.ActionMerge
	ActionCreateNew    = resolver.ActionCreateNew
	ActionConfirmMerge = resolver.ActionConfirmMerge
)

// ConflictChoice is a reviewer's decision on an active conflict.
type ConflictChoice = resolver.ConflictChoice

const (
	ChoiceKeepA    = resolver.ChoiceKeepA
	ChoiceKeepB    = resolver.ChoiceKeepB
	ChoiceKeepBoth = resolver.ChoiceKeepBoth
)

// Outcome is the result envelope returned by ResolveCluster.
type Outcome = resolver.Outcome

// Scorecard is the result of AnalyzeGaps.
type Scorecard = gapanalysis.Scorecard

// RarityTier classifies how common a primary name is.
type RarityTier = resolver.RarityTier

const (
	RarityVeryCommon = resolver.RarityVeryCommon
	RarityCommon     = resolver.RarityCommon
	RarityStandard   = resolver.RarityStandard
)
