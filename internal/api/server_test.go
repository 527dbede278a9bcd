package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/events"
	"github.com/universa-bio/origin/internal/logging"
	"github.com/universa-bio/origin/internal/service/workflow"
)

type stubGenerator struct{ refined string }

func (s *stubGenerator) Refine(_ context.Context, _ []string) (string, error) {
	return s.refined, nil
}

type stubDesigner struct {
	candidates []core.Candidate
	err        error
}

func (s *stubDesigner) Design(_ context.Context, _ string, _ int) ([]core.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

type stubFolder struct {
	pdb string
	err error
}

func (s *stubFolder) Fold(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.pdb, nil
}

type stubRelaxer struct {
	relaxed string
	err     error
}

func (s *stubRelaxer) Available() bool { return true }

func (s *stubRelaxer) Relax(_ context.Context, _ string, _ core.RelaxSettings) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.relaxed, nil
}

func newTestServer(t *testing.T) (*Server, *events.Bus) {
	t.Helper()
	log := logging.NewNop()
	executors := []workflow.Executor{
		workflow.NewRefiner(&stubGenerator{refined: "a refined prompt"}, log),
		workflow.NewGenerator(&stubDesigner{candidates: []core.Candidate{
			{ID: 1, Score: 0.9, Sequence: "MKVA"},
		}}, log),
		workflow.NewPredictor(&stubFolder{pdb: "ATOM\nEND\n"}, &stubRelaxer{relaxed: "ATOM\nTER\nEND\n"}, log),
	}
	bus := events.NewBus(64)
	manager := workflow.NewManager(core.DefaultSettings(), executors, bus, log)
	return NewServer(manager, bus, WithLogger(log)), bus
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, srv *Server, username string) string {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", map[string]string{"username": username})
	if w.Code != http.StatusCreated {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp sessionStateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Session.ID
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", resp["status"])
	}
}

func TestLoginAndGetSession(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	w := doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get session status = %d", w.Code)
	}
	var resp sessionStateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.Username != "ada" {
		t.Errorf("username = %q, want ada", resp.Session.Username)
	}
	if got := resp.Stages[core.StageRefine].Status; got != core.StageStatusIdle {
		t.Errorf("refine status = %s, want idle", got)
	}
}

func TestLoginRejectsBlankUsername(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", map[string]string{"username": "  "})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/api/v1/sessions/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestFullRunOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	w := doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+id+"/workspace", map[string]interface{}{
		"selected_stages": map[string]bool{"refine": true, "generate": true, "predict": true},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("workspace update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+id+"/prompt", map[string]string{
		"prompt": "design an esterase",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("prompt update status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+id+"/run", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("run status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Reports []workflow.StageReport `json:"reports"`
		State   sessionStateResponse   `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode run response: %v", err)
	}
	if len(resp.Reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(resp.Reports))
	}
	for _, rep := range resp.Reports {
		if rep.Status != core.StageStatusCompleted {
			t.Errorf("stage %s status = %s, want completed", rep.Stage, rep.Status)
		}
	}
	if resp.State.Session.SelectedSequence != "MKVA" {
		t.Errorf("selected sequence = %q, want MKVA", resp.State.Session.SelectedSequence)
	}

	// The predict result is retrievable afterwards.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+id+"/results/predict", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("results status = %d", w.Code)
	}
}

func TestRunWithoutSelectedStages(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	w := doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+id+"/workspace", map[string]interface{}{
		"selected_stages": map[string]bool{"refine": false},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("workspace update status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+id+"/run", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("run status = %d, want 422", w.Code)
	}
}

func TestTriggerRejectsUnknownStage(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	w := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+id+"/stages/fold/trigger", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestTriggerRejectsEmptyPrompt(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	w := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+id+"/stages/refine/trigger", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body = %s", w.Code, w.Body.String())
	}
}

func TestSettingsValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	bad := core.DefaultSettings()
	bad.Generate.NumSequences = 0
	w := doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+id+"/settings", bad)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}

	good := core.DefaultSettings()
	good.Generate.NumSequences = 10
	w = doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+id+"/settings", good)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp sessionStateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.Settings.Generate.NumSequences != 10 {
		t.Errorf("num sequences = %d, want 10", resp.Session.Settings.Generate.NumSequences)
	}
}

func TestResetClearsResults(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+id+"/prompt", map[string]string{"prompt": "design an esterase"})
	w := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+id+"/stages/refine/trigger", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("trigger status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+id+"/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+id+"/results/refine", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("results after reset status = %d, want 404", w.Code)
	}
}

func TestStructureDownloadAndExport(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	// No prediction yet.
	w := doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+id+"/structure", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("structure status = %d, want 404", w.Code)
	}

	doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+id+"/sequence", map[string]string{"sequence": "MKVA"})
	w = doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+id+"/stages/predict/trigger", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("predict trigger status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+id+"/structure?variant=relaxed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("structure status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "chemical/x-pdb" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "TER") {
		t.Errorf("relaxed structure body = %q", w.Body.String())
	}

	path := filepath.Join(t.TempDir(), "out.pdb")
	w = doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+id+"/structure/export", map[string]string{
		"path":    path,
		"variant": "raw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body = %s", w.Code, w.Body.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if string(data) != "ATOM\nEND\n" {
		t.Errorf("exported content = %q", data)
	}
}

func TestLogoutRemovesSessionOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	id := login(t, srv, "ada")

	w := doJSON(t, srv, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	w = doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after logout status = %d, want 404", w.Code)
	}
}
