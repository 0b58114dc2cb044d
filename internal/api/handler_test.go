package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/soccercentral/assistant/internal/auth"
	"github.com/soccercentral/assistant/internal/config"
	"github.com/soccercentral/assistant/internal/pipeline"
	"github.com/soccercentral/assistant/internal/schema"
	"github.com/soccercentral/assistant/internal/session"
	"github.com/soccercentral/assistant/internal/storage"
)

type fakeAssistant struct {
	lastRequest pipeline.Request
	response    pipeline.Response
}

func (f *fakeAssistant) Ask(_ context.Context, req pipeline.Request) pipeline.Response {
	f.lastRequest = req
	return f.response
}

type fakeExports struct {
	puts    map[string][]byte
	getBody string
	getErr  error
}

func (f *fakeExports) Put(_ context.Context, key string, body io.Reader, size int64, _ storage.PutOptions) (storage.ObjectInfo, error) {
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	data, _ := io.ReadAll(body)
	f.puts[key] = data
	return storage.ObjectInfo{Key: key, Size: size}, nil
}

func (f *fakeExports) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return io.NopCloser(strings.NewReader(f.getBody)), nil
}

func (f *fakeExports) Stat(_ context.Context, _ string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, storage.ErrObjectNotFound
}

func (f *fakeExports) List(_ context.Context, _ string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeExports) Delete(_ context.Context, _ string) error { return nil }

func testConfig(authRequired bool) config.Config {
	cfg, err := config.Load("assistant-api", func(string) (string, bool) { return "", false })
	if err != nil {
		panic(err)
	}
	cfg.Auth.Required = authRequired
	return cfg
}

func testDeps(assistant *fakeAssistant) Dependencies {
	return Dependencies{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Assistant: assistant,
		Schema:    schema.Default(),
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := NewHandler(testConfig(false), testDeps(&fakeAssistant{}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "assistant-api" {
		t.Fatalf("body = %v", body)
	}
}

func TestReadyEndpointReportsFailures(t *testing.T) {
	deps := testDeps(&fakeAssistant{})
	deps.Readiness = func(context.Context) error { return context.DeadlineExceeded }
	handler := NewHandler(testConfig(false), deps)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAskReturnsPipelineResponse(t *testing.T) {
	assistant := &fakeAssistant{response: pipeline.Response{
		Answer:   "There are 42 players.",
		SQLQuery: "SELECT COUNT(*) AS players FROM players LIMIT 100",
		Data:     []map[string]any{{"players": 42}},
		Columns:  []string{"players"},
		Success:  true,
	}}
	handler := NewHandler(testConfig(false), testDeps(assistant))

	body := bytes.NewBufferString(`{"question": "How many players are there?"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !resp.Success || resp.Answer != "There are 42 players." {
		t.Fatalf("resp = %+v", resp)
	}
	if assistant.lastRequest.Question != "How many players are there?" {
		t.Fatalf("assistant request = %+v", assistant.lastRequest)
	}
}

func TestAskRejectsMissingQuestion(t *testing.T) {
	handler := NewHandler(testConfig(false), testDeps(&fakeAssistant{}))

	for _, payload := range []string{`{}`, `{"question": "  "}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d, want 400", payload, rec.Code)
		}
	}
}

func TestAskRequiresAuthWhenConfigured(t *testing.T) {
	validator, err := auth.NewStaticAPIKeyValidator([]string{"coach-key:coach-anna:assistant_user"})
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	deps := testDeps(&fakeAssistant{response: pipeline.Response{Success: true, Answer: "ok", Data: []map[string]any{}}})
	deps.AuthMiddleware = auth.Middleware(validator, true)
	handler := NewHandler(testConfig(true), deps)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question": "How many players?"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question": "How many players?"}`))
	req.Header.Set("X-API-Key", "coach-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAskForbidsCallersWithoutRole(t *testing.T) {
	validator, err := auth.NewStaticAPIKeyValidator([]string{"other-key:intern:viewer"})
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	deps := testDeps(&fakeAssistant{})
	deps.AuthMiddleware = auth.Middleware(validator, true)
	handler := NewHandler(testConfig(true), deps)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question": "How many players?"}`))
	req.Header.Set("X-API-Key", "other-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAskStoresExport(t *testing.T) {
	assistant := &fakeAssistant{response: pipeline.Response{
		Answer:   "Ada leads.",
		SQLQuery: "SELECT first_name, goals FROM scorers LIMIT 100",
		Data:     []map[string]any{{"first_name": "Ada", "goals": 12}},
		Columns:  []string{"first_name", "goals"},
		Success:  true,
	}}
	exports := &fakeExports{}
	deps := testDeps(assistant)
	deps.Exports = exports
	handler := NewHandler(testConfig(false), deps)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question": "Top scorers?", "export": true}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.ExportKey == "" {
		t.Fatal("expected an export key")
	}
	data, ok := exports.puts["exports/"+resp.ExportKey]
	if !ok {
		t.Fatalf("export not stored, puts = %v", exports.puts)
	}
	if !strings.HasPrefix(string(data), "first_name,goals\n") {
		t.Fatalf("export content = %q", string(data))
	}
}

func TestSessionHistoryEndpoint(t *testing.T) {
	sessions := session.NewStore(time.Minute, 10)
	defer sessions.Stop()
	sessions.Append("s1", session.Exchange{Question: "q", Answer: "a", Success: true, AskedAt: time.Now()})

	deps := testDeps(&fakeAssistant{})
	deps.Sessions = sessions
	handler := NewHandler(testConfig(false), deps)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/s1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		SessionID string             `json:"session_id"`
		History   []session.Exchange `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.SessionID != "s1" || len(body.History) != 1 || body.History[0].Question != "q" {
		t.Fatalf("body = %+v", body)
	}
}

func TestSchemaAndExamplesEndpoints(t *testing.T) {
	handler := NewHandler(testConfig(false), testDeps(&fakeAssistant{}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "players") {
		t.Fatalf("schema: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/examples", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Players") {
		t.Fatalf("examples: status = %d", rec.Code)
	}
}

func TestExportDownload(t *testing.T) {
	deps := testDeps(&fakeAssistant{})
	deps.Exports = &fakeExports{getBody: "first_name,goals\nAda,12\n"}
	handler := NewHandler(testConfig(false), deps)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/exports/2026/08/30/trace-1.csv", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Ada,12") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestExportDownloadNotFound(t *testing.T) {
	deps := testDeps(&fakeAssistant{})
	deps.Exports = &fakeExports{getErr: storage.ErrObjectNotFound}
	handler := NewHandler(testConfig(false), deps)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/exports/missing.csv", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
