package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bidsync/internal/archive"
	"github.com/sells-group/bidsync/internal/crm"
	"github.com/sells-group/bidsync/internal/recon"
	"github.com/sells-group/bidsync/internal/report"
)

var (
	reconcileXLSX  string
	reconcileApply bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile ARCHIVE",
	Short: "Reconcile a feed archive against Salesforce leads",
	Long: `Processes a local feed archive, fetches leads from Salesforce, and prints
the leads whose pipeline stage is stale relative to the feed as JSON.

With --xlsx the mismatch report is also written as a workbook. With --apply
the canonical stage is written back to each stale lead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sfc, err := initSalesforce()
		if err != nil {
			return err
		}

		entries, err := archive.ProcessFile(ctx, args[0], cfg.Ingest.Concurrency)
		if err != nil {
			return eris.Wrap(err, "reconcile: process archive")
		}

		projects := extractProjects(entries)

		leads, err := crm.FetchLeads(ctx, sfc, crm.FetchOptions{
			LeadSource: cfg.CRM.LeadSource,
			MaxRecords: cfg.CRM.MaxRecords,
		})
		if err != nil {
			return eris.Wrap(err, "reconcile: fetch leads")
		}

		matches, stats := recon.Reconcile(leads, projects)

		if reconcileXLSX != "" {
			if err := report.WriteXLSX(reconcileXLSX, matches); err != nil {
				return err
			}
			zap.L().Info("wrote mismatch report", zap.String("path", reconcileXLSX))
		}

		if reconcileApply {
			for _, m := range matches {
				if m.CanonicalStage == nil {
					continue
				}
				if err := crm.ApplyStage(ctx, sfc, m.Lead.ID, *m.CanonicalStage); err != nil {
					return eris.Wrap(err, "reconcile: apply stage")
				}
				zap.L().Info("updated lead stage",
					zap.String("lead_id", m.Lead.ID),
					zap.Stringp("stage", m.CanonicalStage),
				)
			}
		}

		out := struct {
			Stats   recon.Stats         `json:"stats"`
			Matches []recon.MatchRecord `json:"matches"`
		}{Stats: stats, Matches: matches}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "reconcile: encode output")
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileXLSX, "xlsx", "", "write mismatch report to this XLSX path")
	reconcileCmd.Flags().BoolVar(&reconcileApply, "apply", false, "write canonical stages back to stale leads")
	rootCmd.AddCommand(reconcileCmd)
}
