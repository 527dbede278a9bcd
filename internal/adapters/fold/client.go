// Package fold implements the structure-folding collaborator: an HTTP
// client that turns a protein sequence into PDB structure text.
package fold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

// maxStructureBytes caps how much PDB text is read from the response.
const maxStructureBytes = 16 << 20

// Config configures the client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client calls the folding service. The request carries the raw
// sequence as a form-encoded body; the response body is opaque PDB
// text passed through unmodified.
type Client struct {
	config Config
	http   *http.Client
	logger *logging.Logger
}

// Compile-time check that Client implements core.Folder.
var _ core.Folder = (*Client)(nil)

// New creates a new client.
func New(cfg Config, logger *logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.WithCollaborator("fold"),
	}
}

// Fold fetches the predicted structure for a sequence.
func (c *Client) Fold(ctx context.Context, sequence string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint,
		strings.NewReader(sequence))
	if err != nil {
		return "", core.ErrInternal("building fold request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", core.ErrUpstreamTimeout("fold", "folding service timed out").WithCause(err)
		}
		return "", core.ErrUpstream("fold", "folding service unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", core.ErrUpstream("fold",
			fmt.Sprintf("folding service returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStructureBytes))
	if err != nil {
		if isTimeout(err) {
			return "", core.ErrUpstreamTimeout("fold", "reading structure timed out").WithCause(err)
		}
		return "", core.ErrUpstream("fold", "reading structure body").WithCause(err)
	}

	pdb := string(body)
	if strings.TrimSpace(pdb) == "" {
		return "", core.ErrMalformed("folding service returned an empty structure")
	}

	c.logger.Debug("structure fetched",
		"sequence_length", len(sequence),
		"pdb_bytes", len(pdb),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pdb, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
