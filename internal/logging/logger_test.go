package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})
	logger.Info("stage completed", "stage", "refine")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["msg"] != "stage completed" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
	if record["stage"] != "refine" {
		t.Fatalf("unexpected stage attr: %v", record["stage"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "text", Output: &buf})
	logger.Info("should not appear")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("info record leaked through warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn record missing")
	}
}

func TestSanitizer_RedactsCredentials(t *testing.T) {
	s := NewSanitizer()
	in := `request failed: api_key="Zx9uT4bQ7wLm2Rk8Pp1Vv6Ss3Dd0Ff5G" rejected`
	out := s.Sanitize(in)
	if strings.Contains(out, "Zx9uT4bQ7wLm2Rk8Pp1Vv6Ss3Dd0Ff5G") {
		t.Fatalf("api key leaked: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker, got %s", out)
	}
}

func TestSanitizingHandler_RedactsAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})
	logger.Error("refine failed", "detail", "Bearer abcdefghijklmnopqrstuv123456")

	if strings.Contains(buf.String(), "abcdefghijklmnopqrstuv123456") {
		t.Fatalf("bearer token leaked: %s", buf.String())
	}
}

func TestWithStageAndSession(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})
	logger.WithSession("s1").WithStage("predict").Info("running")

	out := buf.String()
	if !strings.Contains(out, `"session_id":"s1"`) || !strings.Contains(out, `"stage":"predict"`) {
		t.Fatalf("context attrs missing: %s", out)
	}
}
