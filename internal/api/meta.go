package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/soccercentral/assistant/internal/pipeline"
	"github.com/soccercentral/assistant/internal/storage"
)

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tables":      deps.Schema.Tables(),
		"description": deps.Schema.Text(),
	})
}

func handleExamples(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": pipeline.Examples(),
	})
}

func handleSessionHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r); !ok {
		return
	}
	sessionID := r.PathValue("id")
	if sessionID == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SESSION_ID_REQUIRED", "session id is required", false, nil)
		return
	}
	var history any = []struct{}{}
	if deps.Sessions != nil {
		if exchanges := deps.Sessions.History(sessionID); exchanges != nil {
			history = exchanges
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    history,
	})
}

func handleExportDownload(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r); !ok {
		return
	}
	if deps.Exports == nil {
		writeError(r.Context(), w, http.StatusNotFound, "EXPORTS_DISABLED", "result exports are not configured", false, nil)
		return
	}
	key := r.PathValue("key")
	if key == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "EXPORT_KEY_REQUIRED", "export key is required", false, nil)
		return
	}
	reader, err := deps.Exports.Get(r.Context(), "exports/"+key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(r.Context(), w, http.StatusNotFound, "EXPORT_NOT_FOUND", "no export with that key", false, nil)
			return
		}
		writeError(r.Context(), w, http.StatusBadGateway, "EXPORT_FETCH_FAILED", err.Error(), true, nil)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}
