// Package recon joins CRM leads against normalized feed projects by their
// shared project identifier and flags leads whose pipeline stage is stale.
package recon

import (
	"go.uber.org/zap"

	"github.com/sells-group/bidsync/internal/crm"
	"github.com/sells-group/bidsync/internal/model"
	"github.com/sells-group/bidsync/internal/stage"
)

// MatchRecord pairs a lead with the feed project it references. Only
// records with StageChanged true are returned by Reconcile.
type MatchRecord struct {
	Lead           crm.Lead      `json:"lead"`
	Project        model.Project `json:"project"`
	ProjectID      string        `json:"projectId"`
	LeadStage      *string       `json:"leadStage"`
	ProjectStage   *string       `json:"projectStage"`
	CanonicalStage *string       `json:"canonicalStage"`
	StageChanged   bool          `json:"stageChanged"`
}

// Stats summarizes one reconciliation pass, including the matched and
// unmatched populations that are excluded from the returned diff list.
type Stats struct {
	Leads        int `json:"leads"`
	Projects     int `json:"projects"`
	Matched      int `json:"matched"`
	StageChanged int `json:"stageChanged"`
	Unmatched    int `json:"unmatched"`
	Skipped      int `json:"skipped"`
	DuplicateIDs int `json:"duplicateIds"`
}

// Reconcile cross-references leads against projects and returns the leads
// whose recorded stage differs from the feed's canonicalized stage. Leads
// with no derivable identifier, or an identifier no project carries, are
// counted and skipped. When projects share an identifier the last one wins.
func Reconcile(leads []crm.Lead, projects []model.Project) ([]MatchRecord, Stats) {
	log := zap.L().With(zap.String("component", "recon"))
	stats := Stats{Leads: len(leads), Projects: len(projects)}

	byID := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		id := ExtractProjectID(p.URL)
		if id == nil {
			continue
		}
		if _, seen := byID[*id]; seen {
			stats.DuplicateIDs++
			log.Debug("duplicate project identifier, keeping later record",
				zap.String("project_id", *id),
			)
		}
		byID[*id] = p
	}

	var changed []MatchRecord
	for _, lead := range leads {
		id := ExtractProjectID(lead.ProjectURL)
		if id == nil {
			stats.Skipped++
			continue
		}
		project, ok := byID[*id]
		if !ok {
			stats.Unmatched++
			continue
		}

		stats.Matched++
		canonical := stage.Canonicalize(project.Stage)
		// A lead is current when its recorded stage agrees with the feed
		// label or its canonical code; anything else is stale.
		current := equalOpt(lead.PipelineStage, canonical) || equalOpt(lead.PipelineStage, project.Stage)
		rec := MatchRecord{
			Lead:           lead,
			Project:        project,
			ProjectID:      *id,
			LeadStage:      lead.PipelineStage,
			ProjectStage:   project.Stage,
			CanonicalStage: canonical,
			StageChanged:   !current,
		}
		if rec.StageChanged {
			stats.StageChanged++
			changed = append(changed, rec)
		}
	}

	log.Info("reconciliation complete",
		zap.Int("leads", stats.Leads),
		zap.Int("projects", stats.Projects),
		zap.Int("matched", stats.Matched),
		zap.Int("stage_changed", stats.StageChanged),
		zap.Int("unmatched", stats.Unmatched),
		zap.Int("skipped", stats.Skipped),
	)
	return changed, stats
}

func equalOpt(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
