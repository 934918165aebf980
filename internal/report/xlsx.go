// Package report exports reconciliation results for the sales team.
package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/bidsync/internal/recon"
)

var header = []string{
	"Lead ID", "Lead Name", "Lead Company", "Project ID",
	"Project Title", "Lead Stage", "Feed Stage", "Canonical Stage",
}

// WriteXLSX writes the stage-mismatch report to an XLSX workbook at path.
func WriteXLSX(path string, matches []recon.MatchRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Stage Mismatches")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}

	for _, m := range matches {
		row := sheet.AddRow()
		row.AddCell().SetString(m.Lead.ID)
		row.AddCell().SetString(deref(m.Lead.Name))
		row.AddCell().SetString(deref(m.Lead.Company))
		row.AddCell().SetString(m.ProjectID)
		row.AddCell().SetString(deref(m.Project.Title))
		row.AddCell().SetString(deref(m.LeadStage))
		row.AddCell().SetString(deref(m.ProjectStage))
		row.AddCell().SetString(deref(m.CanonicalStage))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
