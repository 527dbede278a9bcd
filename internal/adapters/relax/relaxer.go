// Package relax wraps the external structure-relaxation executable.
// The executable is optional: its absence degrades prediction to the
// raw structure instead of failing the stage.
package relax

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

// Config configures the relaxer.
type Config struct {
	// Path is the executable name or absolute path.
	Path string
	// Timeout bounds one relaxation run. Relaxation is a batch
	// process; minutes-scale values are normal.
	Timeout time.Duration
}

// Relaxer invokes the relaxation executable with input/output PDB file
// paths and the session's relaxation parameters.
type Relaxer struct {
	config Config
	logger *logging.Logger

	// lookPath is swappable for tests.
	lookPath func(string) (string, error)
}

// Compile-time check that Relaxer implements core.Relaxer.
var _ core.Relaxer = (*Relaxer)(nil)

// New creates a new relaxer.
func New(cfg Config, logger *logging.Logger) *Relaxer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Relaxer{
		config:   cfg,
		logger:   logger.WithCollaborator("relax"),
		lookPath: exec.LookPath,
	}
}

// Available reports whether the relaxation executable is installed.
func (r *Relaxer) Available() bool {
	if r.config.Path == "" {
		return false
	}
	_, err := r.lookPath(r.config.Path)
	return err == nil
}

// Relax runs the executable against the raw structure and returns the
// relaxed PDB text. Callers treat every error from here as degradation,
// never as a predict-stage failure.
func (r *Relaxer) Relax(ctx context.Context, pdb string, settings core.RelaxSettings) (string, error) {
	bin, err := r.lookPath(r.config.Path)
	if err != nil {
		return "", core.ErrRelaxationUnavailable(
			fmt.Sprintf("relaxation executable %q not found, skipping relaxation", r.config.Path))
	}

	workDir, err := os.MkdirTemp("", "origin-relax-*")
	if err != nil {
		return "", core.ErrRelaxationFailed("creating relaxation work dir").WithCause(err)
	}
	defer os.RemoveAll(workDir)

	inPath := filepath.Join(workDir, "input.pdb")
	outPath := filepath.Join(workDir, "relaxed.pdb")
	if err := os.WriteFile(inPath, []byte(pdb), 0o600); err != nil {
		return "", core.ErrRelaxationFailed("writing input structure").WithCause(err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	args := []string{
		"--input", inPath,
		"--output", outPath,
		"--max-iterations", strconv.Itoa(settings.MaxIterations),
		"--tolerance", strconv.FormatFloat(settings.Tolerance, 'f', -1, 64),
		"--stiffness", strconv.FormatFloat(settings.Stiffness, 'f', -1, 64),
	}
	if settings.UseGPU {
		args = append(args, "--use-gpu")
	}

	cmd := exec.CommandContext(runCtx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", core.ErrRelaxationFailed("relaxation timed out").WithCause(runCtx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", core.ErrRelaxationFailed("relaxation process failed: " + msg).WithCause(err)
	}

	relaxed, err := os.ReadFile(outPath)
	if err != nil {
		return "", core.ErrRelaxationFailed("relaxation produced no output file").WithCause(err)
	}
	if strings.TrimSpace(string(relaxed)) == "" {
		return "", core.ErrRelaxationFailed("relaxation produced an empty structure")
	}

	r.logger.Debug("structure relaxed",
		"iterations_cap", settings.MaxIterations,
		"use_gpu", settings.UseGPU,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return string(relaxed), nil
}
