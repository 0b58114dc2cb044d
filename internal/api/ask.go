package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/soccercentral/assistant/internal/auth"
	"github.com/soccercentral/assistant/internal/observability"
	"github.com/soccercentral/assistant/internal/pipeline"
	"github.com/soccercentral/assistant/internal/session"
	"github.com/soccercentral/assistant/internal/storage"
	"github.com/soccercentral/assistant/internal/store"
)

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
	Export    bool   `json:"export"`
}

type askResponse struct {
	pipeline.Response
	ExportKey string `json:"export_key,omitempty"`
}

const maxAskBodyBytes = 64 << 10

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	caller, ok := requireRole(w, r)
	if !ok {
		return
	}

	var req askRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with a question field", false, nil)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	resp := deps.Assistant.Ask(r.Context(), pipeline.Request{
		Question:  req.Question,
		SessionID: req.SessionID,
		Caller:    caller,
	})

	out := askResponse{Response: resp}
	if req.Export && resp.Success && deps.Exports != nil && len(resp.Data) > 0 {
		key, err := storeExport(r, deps, resp)
		if err != nil {
			deps.Logger.WarnContext(r.Context(), "result_export_failed",
				slog.String("error", err.Error()),
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())))
		} else {
			out.ExportKey = key
		}
	}

	if deps.Sessions != nil && req.SessionID != "" {
		deps.Sessions.Append(req.SessionID, session.Exchange{
			Question: strings.TrimSpace(req.Question),
			Answer:   resp.Answer,
			Success:  resp.Success,
			AskedAt:  time.Now().UTC(),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func storeExport(r *http.Request, deps Dependencies, resp pipeline.Response) (string, error) {
	data, err := store.EncodeCSV(store.Result{Columns: resp.Columns, Rows: resp.Data})
	if err != nil {
		return "", err
	}
	// The returned key is relative to the exports/ prefix so it can be
	// appended to /v1/exports/ for download.
	key := fmt.Sprintf("%s/%s.csv",
		time.Now().UTC().Format("2006/01/02"),
		observability.TraceIDFromContext(r.Context()),
	)
	if _, err := deps.Exports.Put(r.Context(), "exports/"+key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{
		ContentType: "text/csv",
	}); err != nil {
		return "", err
	}
	return key, nil
}

// requireRole resolves the caller name and enforces the assistant role for
// authenticated requests. Anonymous requests pass when auth is optional; the
// auth middleware already rejected them otherwise.
func requireRole(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return "", true
	}
	if !identity.HasRole(RoleAssistantUser) {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", "caller lacks the assistant role", false, nil)
		return "", false
	}
	return identity.Name, true
}
