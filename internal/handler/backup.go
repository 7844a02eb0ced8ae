package handler

import (
	"io"
	"net/http"

	"github.com/rmamani/finanzas-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Backup / restore / reset
// ============================================================

func exportBackupHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/backup")
		defer span.End()

		backup, err := svc.ExportBackup(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="finanzas-backup.json"`)
		writeJSON(w, http.StatusOK, backup)
	}
}

func importBackupHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/backup")
		defer span.End()

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read request body")
			return
		}
		defer r.Body.Close()

		if err := svc.ImportBackup(ctx, raw); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
	}
}

func resetHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/reset")
		defer span.End()

		if err := svc.ResetAll(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}
