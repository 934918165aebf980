// Package crm fetches lead records from Salesforce for reconciliation
// against the project feed.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	sfpkg "github.com/sells-group/bidsync/pkg/salesforce"
)

// Custom field keys on the Lead object consumed by reconciliation.
const (
	FieldProjectURL    = "Project_URL__c"
	FieldPipelineStage = "Pipeline_Stage__c"
)

// Lead is the slice of a Salesforce Lead record the pipeline reads. The
// record is otherwise passed through to match output unchanged.
type Lead struct {
	ID            string  `json:"Id"`
	Name          *string `json:"Name,omitempty"`
	Company       *string `json:"Company,omitempty"`
	Status        *string `json:"Status,omitempty"`
	ProjectURL    *string `json:"Project_URL__c,omitempty"`
	PipelineStage *string `json:"Pipeline_Stage__c,omitempty"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "Name", "Company", "Status",
	FieldProjectURL, FieldPipelineStage,
}

// FetchOptions configure a lead fetch. Both values come from configuration,
// not user input. MaxRecords caps the total result set; the API pages at its
// own server-side batch size below that.
type FetchOptions struct {
	LeadSource string
	MaxRecords int
}

// FetchLeads returns every lead matching the configured lead source. Any
// transport or API failure aborts the fetch; a partial lead list is never
// returned.
func FetchLeads(ctx context.Context, c sfpkg.Client, opts FetchOptions) ([]Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE LeadSource = '%s'",
		strings.Join(leadFields, ", "),
		escapeSoql(opts.LeadSource),
	)
	if opts.MaxRecords > 0 {
		soql += fmt.Sprintf(" LIMIT %d", opts.MaxRecords)
	}

	var leads []Lead
	pages := 0
	err := c.QueryPaged(ctx, soql, func(records json.RawMessage) error {
		var page []Lead
		if err := json.Unmarshal(records, &page); err != nil {
			return eris.Wrap(err, "crm: decode lead page")
		}
		leads = append(leads, page...)
		pages++
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "crm: fetch leads")
	}

	zap.L().Info("fetched leads",
		zap.String("lead_source", opts.LeadSource),
		zap.Int("pages", pages),
		zap.Int("leads", len(leads)),
	)
	return leads, nil
}

// ApplyStage writes the canonical stage back onto a lead.
func ApplyStage(ctx context.Context, c sfpkg.Client, leadID, canonical string) error {
	fields := map[string]any{FieldPipelineStage: canonical}
	if err := c.UpdateOne(ctx, "Lead", leadID, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("crm: apply stage to lead %s", leadID))
	}
	return nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
