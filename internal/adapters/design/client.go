// Package design implements the sequence-design collaborator: a client
// for a hosted de novo generator whose reply carries the scored
// candidates as a markdown table.
package design

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

// designRoute is the generator's design-and-score operation.
const designRoute = "gradio_api/call/design_and_protrek_score"

// Config configures the client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client calls the sequence-design service. The service uses a
// submit-then-stream protocol: a POST enqueues the job and returns an
// event id, a follow-up GET streams events until the result is ready.
type Client struct {
	config Config
	http   *http.Client
	logger *logging.Logger
}

// Compile-time check that Client implements core.SequenceDesigner.
var _ core.SequenceDesigner = (*Client)(nil)

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
		logger: logger.WithCollaborator("design"),
	}
}

// Design requests count candidates for the prompt and returns the
// parsed rows in arrival order. Zero parseable rows yields an
// empty-result error; the caller keeps the stored set empty rather
// than failing the session.
func (c *Client) Design(ctx context.Context, prompt string, count int) ([]core.Candidate, error) {
	eventID, err := c.submit(ctx, prompt, count)
	if err != nil {
		return nil, err
	}

	table, err := c.awaitResult(ctx, eventID)
	if err != nil {
		return nil, err
	}

	candidates := ParseCandidateTable(table)
	if len(candidates) == 0 {
		return nil, core.ErrEmptyResult("sequence generator returned no parseable candidates")
	}

	c.logger.Debug("candidates parsed", "count", len(candidates), "requested", count)
	return candidates, nil
}

func (c *Client) submit(ctx context.Context, prompt string, count int) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"data": []interface{}{prompt, count},
	})
	if err != nil {
		return "", core.ErrInternal("encoding design request").WithCause(err)
	}

	url := strings.TrimRight(c.config.Endpoint, "/") + "/" + designRoute
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", core.ErrInternal("building design request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.transportError(err, "submitting design job")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", core.ErrUpstream("design",
			fmt.Sprintf("sequence generator returned status %d", resp.StatusCode))
	}

	var submitted struct {
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil || submitted.EventID == "" {
		return "", core.ErrMalformed("design job submission reply is missing the event id").WithCause(err)
	}
	return submitted.EventID, nil
}

// awaitResult streams job events until the completion payload arrives
// and returns its first element: the markdown candidate table.
func (c *Client) awaitResult(ctx context.Context, eventID string) (string, error) {
	url := strings.TrimRight(c.config.Endpoint, "/") + "/" + designRoute + "/" + eventID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", core.ErrInternal("building design poll request").WithCause(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.transportError(err, "streaming design result")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", core.ErrUpstream("design",
			fmt.Sprintf("design result stream returned status %d", resp.StatusCode))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	complete := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "event:"):
			complete = strings.TrimSpace(strings.TrimPrefix(line, "event:")) == "complete"
		case strings.HasPrefix(line, "data:") && complete:
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			var data []interface{}
			if err := json.Unmarshal([]byte(payload), &data); err != nil || len(data) == 0 {
				return "", core.ErrMalformed("design completion payload is not the expected array").WithCause(err)
			}
			table, ok := data[0].(string)
			if !ok {
				return "", core.ErrMalformed("design completion payload does not start with a table")
			}
			return table, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", c.transportError(err, "reading design result stream")
	}
	return "", core.ErrMalformed("design result stream ended without a completion event")
}

func (c *Client) transportError(err error, action string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.ErrUpstreamTimeout("design", action+" timed out").WithCause(err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.ErrUpstreamTimeout("design", action+" timed out").WithCause(err)
	}
	return core.ErrUpstream("design", "sequence generator unreachable").WithCause(err)
}

// candidateRow matches one well-formed candidate entry:
// | index | logProbPerToken | score | sequence |
// Rows that do not match (headers, separators, malformed lines) are
// discarded.
var candidateRow = regexp.MustCompile(`\|\s*(\d+)\s*\|\s*(-?\d*\.\d+)\s*\|\s*(\d*\.\d+)\s*\|\s*([A-Za-z]+)\s*\|`)

// ParseCandidateTable extracts candidates from a markdown table,
// keeping arrival order. Numeric conversion failures drop the row.
func ParseCandidateTable(table string) []core.Candidate {
	rows := candidateRow.FindAllStringSubmatch(table, -1)
	candidates := make([]core.Candidate, 0, len(rows))
	for _, row := range rows {
		id, err := strconv.Atoi(row[1])
		if err != nil {
			continue
		}
		logProb, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, core.Candidate{
			ID:              id,
			LogProbPerToken: logProb,
			Score:           score,
			Sequence:        row[4],
		})
	}
	return candidates
}
