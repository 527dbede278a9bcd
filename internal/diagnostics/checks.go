// Package diagnostics verifies that the orchestrator's collaborators
// and host environment are usable before a workflow is started.
package diagnostics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/universa-bio/origin/internal/config"
	"github.com/universa-bio/origin/internal/core"
)

// CheckStatus classifies one diagnostic result.
type CheckStatus string

const (
	StatusOK      CheckStatus = "ok"
	StatusWarning CheckStatus = "warning"
	StatusError   CheckStatus = "error"
)

// CheckResult is the outcome of one diagnostic check.
type CheckResult struct {
	Name     string        `json:"name"`
	Status   CheckStatus   `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Required bool          `json:"required"`
	Duration time.Duration `json:"duration"`
}

// Runner executes all diagnostic checks against a configuration.
type Runner struct {
	cfg     *config.Config
	client  *http.Client
	relaxer core.Relaxer
}

// NewRunner creates a diagnostics runner. The relaxer may be nil when
// relaxation is not configured at all.
func NewRunner(cfg *config.Config, relaxer core.Relaxer) *Runner {
	return &Runner{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		relaxer: relaxer,
	}
}

// Run executes every check. Endpoint probes run in parallel; the
// returned slice is sorted by check name so output is stable.
func (r *Runner) Run(ctx context.Context) []CheckResult {
	var (
		mu      sync.Mutex
		results []CheckResult
	)
	add := func(res CheckResult) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		add(r.probeEndpoint(ctx, "refine endpoint", r.cfg.Refine.Endpoint, true))
		return nil
	})
	g.Go(func() error {
		add(r.probeEndpoint(ctx, "design endpoint", r.cfg.Design.Endpoint, true))
		return nil
	})
	g.Go(func() error {
		add(r.probeEndpoint(ctx, "fold endpoint", r.cfg.Fold.Endpoint, true))
		return nil
	})
	g.Go(func() error {
		add(r.checkAPIKey())
		return nil
	})
	g.Go(func() error {
		add(r.checkRelaxer())
		return nil
	})
	g.Go(func() error {
		add(r.checkMemory())
		return nil
	})
	g.Go(func() error {
		add(r.checkGPU())
		return nil
	})
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

// Healthy reports whether no required check failed.
func Healthy(results []CheckResult) bool {
	for _, res := range results {
		if res.Required && res.Status == StatusError {
			return false
		}
	}
	return true
}

// probeEndpoint checks that a collaborator endpoint answers HTTP at
// all. Any status code counts as reachable; these services routinely
// reject bare GETs on their API paths.
func (r *Runner) probeEndpoint(ctx context.Context, name, endpoint string, required bool) CheckResult {
	start := time.Now()
	res := CheckResult{Name: name, Required: required}

	if endpoint == "" {
		res.Status = StatusError
		res.Detail = "endpoint not configured"
		res.Duration = time.Since(start)
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		res.Status = StatusError
		res.Detail = fmt.Sprintf("invalid endpoint: %v", err)
		res.Duration = time.Since(start)
		return res
	}

	resp, err := r.client.Do(req)
	if err != nil {
		res.Status = StatusError
		res.Detail = fmt.Sprintf("unreachable: %v", err)
		res.Duration = time.Since(start)
		return res
	}
	defer resp.Body.Close()

	res.Status = StatusOK
	res.Detail = fmt.Sprintf("reachable (HTTP %d)", resp.StatusCode)
	res.Duration = time.Since(start)
	return res
}

func (r *Runner) checkAPIKey() CheckResult {
	start := time.Now()
	res := CheckResult{Name: "refine api key", Required: true}
	if r.cfg.Refine.APIKey == "" {
		res.Status = StatusError
		res.Detail = "not set; export ORIGIN_REFINE_API_KEY or add refine.api_key to the config file"
	} else {
		res.Status = StatusOK
		res.Detail = "configured"
	}
	res.Duration = time.Since(start)
	return res
}

// checkRelaxer verifies the relaxation executable. Missing relaxation
// is a warning: the predict stage degrades to the raw structure.
func (r *Runner) checkRelaxer() CheckResult {
	start := time.Now()
	res := CheckResult{Name: "relaxation executable", Required: false}
	switch {
	case r.relaxer == nil:
		res.Status = StatusWarning
		res.Detail = "not configured; predicted structures will not be relaxed"
	case !r.relaxer.Available():
		res.Status = StatusWarning
		res.Detail = fmt.Sprintf("%s not found in PATH; predicted structures will not be relaxed", r.cfg.Relax.Path)
	default:
		res.Status = StatusOK
		res.Detail = r.cfg.Relax.Path
	}
	res.Duration = time.Since(start)
	return res
}
