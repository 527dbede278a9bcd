// Package llm implements the prompt-refinement collaborator: a chat
// completions client that turns a protein design idea into a detailed
// generator prompt.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

// systemInstruction is the fixed instruction sent ahead of the user
// messages. The collaborator must answer with a JSON object holding the
// refined prompt under the "response" key and nothing else.
const systemInstruction = `You are a helpful assistant who helps biologists generate a detailed prompt for a protein sequence generator.
Do not ask for additional details.
Only generate a detailed prompt.
Output should include only the pure prompt without any additional commentary or explanation.
Provide output in JSON format only with key "response".

JSON format:

{
  "response": "__YOUR_RESPONSE_HERE__"
}

Do not include any explanation, markdown, or extra text outside the JSON.
The value of 'response' should contain your full answer as a string.`

// Config configures the client.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// Client calls a chat-completions endpoint with a streaming response.
type Client struct {
	config Config
	http   *http.Client
	logger *logging.Logger
}

// Compile-time check that Client implements core.TextGenerator.
var _ core.TextGenerator = (*Client)(nil)

// New creates a new client.
func New(cfg Config, logger *logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.WithCollaborator("llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Refine sends the user messages plus the fixed system instruction and
// returns the refined prompt. The streamed reply is accumulated in full
// before interpretation; partial chunks are never parsed on their own.
func (c *Client) Refine(ctx context.Context, userMessages []string) (string, error) {
	if c.config.APIKey == "" {
		return "", core.ErrConfig(core.CodeConfigMissingKey,
			"refine API key is missing; set ORIGIN_REFINE_API_KEY")
	}

	messages := make([]chatMessage, 0, len(userMessages)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemInstruction})
	for _, text := range userMessages {
		messages = append(messages, chatMessage{Role: "user", Content: text})
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return "", core.ErrInternal("encoding chat request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", core.ErrInternal("building chat request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", core.ErrUpstreamTimeout("llm", "text generation timed out").WithCause(err)
		}
		return "", core.ErrUpstream("llm", "text generation service unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", core.ErrUpstream("llm",
			fmt.Sprintf("text generation returned status %d", resp.StatusCode))
	}

	output, err := accumulateStream(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return "", core.ErrUpstreamTimeout("llm", "stream interrupted by timeout").WithCause(err)
		}
		return "", core.ErrUpstream("llm", "reading streamed reply").WithCause(err)
	}

	c.logger.Debug("stream accumulated",
		"bytes", len(output),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	refined, err := parseRefinedPrompt(output)
	if err != nil {
		return "", err
	}
	return refined, nil
}

// accumulateStream concatenates the delta content of every SSE chunk.
// The full message only becomes meaningful once the stream ends.
func accumulateStream(r io.Reader) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Non-JSON keepalives are skipped, not fatal.
			continue
		}
		for _, choice := range chunk.Choices {
			sb.WriteString(choice.Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// parseRefinedPrompt interprets the accumulated reply as the expected
// {"response": string} JSON object.
func parseRefinedPrompt(output string) (string, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "", core.ErrMalformed("text generation returned an empty reply")
	}

	var reply struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal([]byte(trimmed), &reply); err != nil {
		return "", core.ErrMalformed("reply is not the expected JSON object, possibly due to rate limits").WithCause(err)
	}
	if strings.TrimSpace(reply.Response) == "" {
		return "", core.ErrMalformed("reply is missing the response field")
	}
	return strings.TrimSpace(reply.Response), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
