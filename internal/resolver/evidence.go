package resolver

import "github.com/spokegraph/provisioner/internal/model"

// buildEvidencePanel emits the per-factor evidence rows shown to a reviewer
// for an AMBIGUOUS_MATCH cluster (spec §4.5.1 step 8).
func buildEvidencePanel(cluster *model.SignalCluster, candidate *model.Entity) []model.EvidenceItem {
	f := cluster.AssociationFactors
	panel := []model.EvidenceItem{
		{Factor: "name", Value: cluster.CandidateEntityName, Status: statusFor(f.Name, 0.82, 0.4)},
		{Factor: "handle", Value: "", Status: statusFor(f.Handle, 0.85, 0)},
		{Factor: "org_title", Value: "", Status: statusFor(f.OrgTitle, 1.0, 0.3)},
		{Factor: "location", Value: "", Status: statusFor(f.Location, 1.0, 0)},
		{Factor: "bio", Value: "", Status: statusFor(f.Bio, 0.5, 0)},
	}
	if len(cluster.Signals.Names) > 0 {
		panel[0].Value = cluster.Signals.Names[0]
	}
	if x := cluster.Signals.Handles.X; x != "" {
		panel[1].Value = x
	} else if cluster.Signals.Handles.LinkedIn != "" {
		panel[1].Value = cluster.Signals.Handles.LinkedIn
	}
	if len(cluster.Signals.Organizations) > 0 {
		panel[2].Value = cluster.Signals.Organizations[0]
	}
	if len(cluster.Signals.Locations) > 0 {
		panel[3].Value = cluster.Signals.Locations[0]
	}

	for _, c := range cluster.Contradictions {
		switch c.Kind {
		case "linkedin_mismatch", "x_handle_mismatch", "instagram_handle_mismatch":
			panel[1].Status = model.EvidenceConflict
		case "location_mismatch":
			panel[3].Status = model.EvidenceConflict
		case "current_company_mismatch":
			panel[2].Status = model.EvidenceConflict
		}
	}
	return panel
}

func statusFor(factor, matchFloor, partialFloor float64) model.EvidenceStatus {
	switch {
	case factor <= 0:
		return model.EvidenceNoMatch
	case factor >= matchFloor:
		return model.EvidenceMatch
	case partialFloor > 0 && factor >= partialFloor:
		return model.EvidencePartial
	default:
		return model.EvidenceWeak
	}
}
