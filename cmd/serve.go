package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bidsync/internal/archive"
	"github.com/sells-group/bidsync/internal/config"
	"github.com/sells-group/bidsync/internal/crm"
	"github.com/sells-group/bidsync/internal/extract"
	"github.com/sells-group/bidsync/internal/model"
	"github.com/sells-group/bidsync/internal/recon"
	sfpkg "github.com/sells-group/bidsync/pkg/salesforce"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the feed upload and reconciliation server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sfc, err := initSalesforce()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newMux(cfg, sfc),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// uploadResponse is the JSON body returned for a processed archive.
type uploadResponse struct {
	Success        bool                `json:"success"`
	FilesProcessed int                 `json:"filesProcessed"`
	TotalProjects  int                 `json:"totalProjects"`
	TotalLeads     int                 `json:"totalLeads"`
	MatchesFound   int                 `json:"matchesFound"`
	Matches        []recon.MatchRecord `json:"matches"`
}

func newMux(cfg *config.Config, sfc sfpkg.Client) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		runID := uuid.NewString()
		log := zap.L().With(zap.String("run_id", runID))

		r.Body = http.MaxBytesReader(w, r.Body, cfg.Ingest.MaxUploadMB<<20)

		file, header, err := r.FormFile("archive")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no archive uploaded"})
			return
		}
		defer file.Close() //nolint:errcheck

		data, err := io.ReadAll(file)
		if err != nil {
			log.Error("read upload failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read upload: " + err.Error()})
			return
		}
		log.Info("archive received",
			zap.String("filename", header.Filename),
			zap.Int("bytes", len(data)),
		)

		entries, err := archive.Process(ctx, bytes.NewReader(data), int64(len(data)), cfg.Ingest.Concurrency)
		if err != nil {
			log.Error("archive processing failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		projects := extractProjects(entries)

		leads, err := crm.FetchLeads(ctx, sfc, crm.FetchOptions{
			LeadSource: cfg.CRM.LeadSource,
			MaxRecords: cfg.CRM.MaxRecords,
		})
		if err != nil {
			log.Error("lead fetch failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		matches, stats := recon.Reconcile(leads, projects)
		if matches == nil {
			matches = []recon.MatchRecord{}
		}
		log.Info("upload reconciled",
			zap.Int("files", len(entries)),
			zap.Int("projects", stats.Projects),
			zap.Int("leads", stats.Leads),
			zap.Int("stage_changed", stats.StageChanged),
		)

		writeJSON(w, http.StatusOK, uploadResponse{
			Success:        true,
			FilesProcessed: len(entries),
			TotalProjects:  len(projects),
			TotalLeads:     len(leads),
			MatchesFound:   len(matches),
			Matches:        matches,
		})
	})

	return mux
}

// extractProjects normalizes every parsed archive entry.
func extractProjects(entries []archive.Entry) []model.Project {
	var projects []model.Project
	for _, e := range entries {
		docProjects := extract.Extract(e.Doc)
		zap.L().Debug("extracted projects",
			zap.String("entry", e.Path),
			zap.Int("projects", len(docProjects)),
		)
		projects = append(projects, docProjects...)
	}
	return projects
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
