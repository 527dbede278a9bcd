package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCmd_Structure(t *testing.T) {
	if rootCmd.Use != "origin" {
		t.Errorf("expected 'origin', got '%s'", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("expected non-empty short description")
	}

	subcommands := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		subcommands[c.Name()] = true
	}
	for _, name := range []string{"run", "serve", "doctor", "init", "version"} {
		if !subcommands[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestInitWritesConfigScaffold(t *testing.T) {
	tmpDir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	path := filepath.Join(tmpDir, ".origin", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read scaffold: %v", err)
	}
	content := string(data)
	for _, want := range []string{"refine:", "design:", "fold:", "relax:", "display:"} {
		if !strings.Contains(content, want) {
			t.Errorf("scaffold missing %q section", want)
		}
	}
	// API keys never belong in the scaffold.
	if strings.Contains(content, "api_key:") {
		t.Error("scaffold contains an api_key entry")
	}

	// A second init without --force must refuse to overwrite.
	initForce = false
	if err := runInit(nil, nil); err == nil {
		t.Error("second init overwrote existing config")
	}
}

func TestCurrentUsernameNeverEmpty(t *testing.T) {
	if currentUsername() == "" {
		t.Error("currentUsername returned empty string")
	}
}
