package workflow

import (
	"errors"
	"testing"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/logging"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	log := logging.NewNop()
	executors := []Executor{
		NewRefiner(&fakeGenerator{refined: "refined"}, log),
		NewGenerator(&fakeDesigner{}, log),
		NewPredictor(&fakeFolder{pdb: "END\n"}, nil, log),
	}
	return NewManager(core.DefaultSettings(), executors, nil, log)
}

func TestLoginCreatesSessionWithDefaults(t *testing.T) {
	m := newManager(t)

	ctrl, err := m.Login("ada")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	s := ctrl.Session()
	if s.Username != "ada" {
		t.Errorf("username = %q, want ada", s.Username)
	}
	if !s.LoggedIn {
		t.Error("session not marked logged in")
	}
	if s.ID == "" {
		t.Error("session has no ID")
	}
	if !s.AutoMode {
		t.Error("new session should default to auto mode")
	}
	if !s.StageSelected(core.StageRefine) {
		t.Error("new session should preselect the refine stage")
	}
	if s.StageSelected(core.StageGenerate) || s.StageSelected(core.StagePredict) {
		t.Error("new session preselected stages beyond refine")
	}
	if s.Settings.Generate.NumSequences != 5 {
		t.Errorf("num sequences = %d, want 5", s.Settings.Generate.NumSequences)
	}
}

func TestLoginRejectsEmptyUsername(t *testing.T) {
	m := newManager(t)
	for _, name := range []string{"", "   ", "\t"} {
		if _, err := m.Login(name); err == nil {
			t.Errorf("Login(%q) accepted a blank username", name)
		}
	}
	if m.Count() != 0 {
		t.Errorf("%d sessions after rejected logins, want 0", m.Count())
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newManager(t)

	a, err := m.Login("ada")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	b, err := m.Login("grace")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if a.Session().ID == b.Session().ID {
		t.Fatal("two logins share a session ID")
	}

	a.Session().SetPrompt("design an esterase")
	a.Session().Settings.Generate.NumSequences = 20
	if b.Session().Prompt != "" {
		t.Error("prompt leaked between sessions")
	}
	if b.Session().Settings.Generate.NumSequences != 5 {
		t.Error("settings leaked between sessions")
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := newManager(t)
	_, err := m.Get("no-such-id")
	if err == nil {
		t.Fatal("Get returned a controller for an unknown session")
	}
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr.Category != core.ErrCatState {
		t.Errorf("error = %v, want state category", err)
	}
}

func TestLogoutRemovesSession(t *testing.T) {
	m := newManager(t)
	ctrl, err := m.Login("ada")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := m.Logout(ctrl.Session().ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ctrl.Session().LoggedIn {
		t.Error("session still marked logged in after logout")
	}
	if _, err := m.Get(ctrl.Session().ID); err == nil {
		t.Error("logged-out session still reachable")
	}
	if err := m.Logout(ctrl.Session().ID); err == nil {
		t.Error("double logout did not error")
	}
}

func TestManagerReset(t *testing.T) {
	m := newManager(t)
	ctrl, err := m.Login("ada")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	ctrl.Session().SetPrompt("design an esterase")
	ctrl.Store().Set(core.StageRefine, core.RefinedText{Text: "refined"})

	if err := m.Reset(ctrl.Session().ID); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ctrl.Session().Prompt != "" {
		t.Error("prompt survived reset")
	}
	if _, ok := ctrl.Store().RefinedText(); ok {
		t.Error("stored result survived reset")
	}

	if err := m.Reset("no-such-id"); err == nil {
		t.Error("reset of unknown session did not error")
	}
}
