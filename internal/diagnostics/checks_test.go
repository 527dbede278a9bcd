package diagnostics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/universa-bio/origin/internal/config"
	"github.com/universa-bio/origin/internal/core"
)

type stubRelaxer struct{ available bool }

func (s *stubRelaxer) Available() bool { return s.available }

func (s *stubRelaxer) Relax(_ context.Context, pdb string, _ core.RelaxSettings) (string, error) {
	return pdb, nil
}

func testConfig(endpoint string) *config.Config {
	cfg := &config.Config{}
	cfg.Refine.Endpoint = endpoint
	cfg.Refine.APIKey = "test-key"
	cfg.Design.Endpoint = endpoint
	cfg.Fold.Endpoint = endpoint
	cfg.Relax.Path = "amber-relax"
	return cfg
}

func findResult(t *testing.T, results []CheckResult, name string) CheckResult {
	t.Helper()
	for _, res := range results {
		if res.Name == name {
			return res
		}
	}
	t.Fatalf("no check named %q in %v", name, results)
	return CheckResult{}
}

func TestRunWithReachableEndpoints(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer ts.Close()

	r := NewRunner(testConfig(ts.URL), &stubRelaxer{available: true})
	results := r.Run(context.Background())

	for _, name := range []string{"refine endpoint", "design endpoint", "fold endpoint"} {
		res := findResult(t, results, name)
		// A 405 still proves the service answers HTTP.
		if res.Status != StatusOK {
			t.Errorf("%s status = %s, detail = %s", name, res.Status, res.Detail)
		}
	}
	if res := findResult(t, results, "refine api key"); res.Status != StatusOK {
		t.Errorf("api key status = %s", res.Status)
	}
	if res := findResult(t, results, "relaxation executable"); res.Status != StatusOK {
		t.Errorf("relaxer status = %s, detail = %s", res.Status, res.Detail)
	}
	if !Healthy(results) {
		t.Error("healthy config reported unhealthy")
	}
}

func TestRunFlagsUnreachableEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	cfg := testConfig(ts.URL)
	ts.Close()
	cfg.Fold.Endpoint = ts.URL // now refused

	r := NewRunner(cfg, &stubRelaxer{available: true})
	results := r.Run(context.Background())

	res := findResult(t, results, "fold endpoint")
	if res.Status != StatusError {
		t.Fatalf("fold status = %s, want error", res.Status)
	}
	if !strings.Contains(res.Detail, "unreachable") {
		t.Errorf("detail = %q", res.Detail)
	}
	if Healthy(results) {
		t.Error("unreachable required endpoint reported healthy")
	}
}

func TestMissingAPIKeyIsRequiredFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.Refine.APIKey = ""

	r := NewRunner(cfg, &stubRelaxer{available: true})
	results := r.Run(context.Background())

	res := findResult(t, results, "refine api key")
	if res.Status != StatusError || !res.Required {
		t.Fatalf("api key check = %+v, want required error", res)
	}
	if Healthy(results) {
		t.Error("missing api key reported healthy")
	}
}

func TestMissingRelaxerIsOnlyWarning(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	r := NewRunner(testConfig(ts.URL), &stubRelaxer{available: false})
	results := r.Run(context.Background())

	res := findResult(t, results, "relaxation executable")
	if res.Status != StatusWarning {
		t.Fatalf("relaxer status = %s, want warning", res.Status)
	}
	if res.Required {
		t.Error("relaxation marked required")
	}
	if !Healthy(results) {
		t.Error("missing relaxer must not fail the doctor run")
	}
}

func TestNilRelaxerIsWarning(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	r := NewRunner(testConfig(ts.URL), nil)
	results := r.Run(context.Background())

	res := findResult(t, results, "relaxation executable")
	if res.Status != StatusWarning {
		t.Fatalf("relaxer status = %s, want warning", res.Status)
	}
}
