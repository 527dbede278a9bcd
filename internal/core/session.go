package core

import (
	"strings"
	"time"
)

// Session is the unit of execution context: one logged-in user driving
// one pipeline. A session exclusively owns its nested entities; nothing
// is shared across sessions. Settings survive a workflow reset,
// workflow inputs and outputs do not.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	LoggedIn  bool      `json:"logged_in"`
	CreatedAt time.Time `json:"created_at"`

	// Workspace configuration. Survives ResetWorkflowData.
	SelectedStages map[Stage]bool `json:"selected_stages"`
	AutoMode       bool           `json:"auto_mode"`
	Settings       Settings       `json:"settings"`

	// Workflow inputs. Cleared by ResetWorkflowData.
	Prompt           string `json:"prompt"`
	SelectedSequence string `json:"selected_sequence"`
}

// NewSession creates a fresh session with defaults applied.
func NewSession(id, username string) *Session {
	s := &Session{
		ID:        id,
		Username:  username,
		LoggedIn:  true,
		CreatedAt: time.Now(),
	}
	s.EnsureDefaults()
	return s
}

// EnsureDefaults idempotently populates missing values. Only fields
// still at their uninitialized value are touched, so a partially
// initialized session (for example one restored from a snapshot) keeps
// its user edits. Calling it twice changes nothing.
func (s *Session) EnsureDefaults() {
	fresh := s.SelectedStages == nil
	if fresh {
		s.SelectedStages = map[Stage]bool{StageRefine: true}
		// Auto mode defaults on, but only for a brand-new session;
		// an explicit "off" must survive re-initialization.
		s.AutoMode = true
	}
	if (s.Settings == Settings{}) {
		s.Settings = DefaultSettings()
	}
	if s.Settings.Generate.NumSequences == 0 {
		s.Settings.Generate.NumSequences = DefaultSettings().Generate.NumSequences
	}
	if s.Settings.Display.ColorScheme == "" {
		s.Settings.Display.ColorScheme = ColorSchemeRainbow
	}
	if s.Settings.Display.Variant == "" {
		s.Settings.Display.Variant = StructureVariantRaw
	}
}

// StageSelected reports whether a stage is part of the workspace.
func (s *Session) StageSelected(stage Stage) bool {
	return s.SelectedStages[stage]
}

// SelectStage adds or removes a stage from the workspace configuration.
func (s *Session) SelectStage(stage Stage, selected bool) error {
	if !ValidStage(stage) {
		return ErrValidation("STAGE_INVALID", "unknown stage: "+stage.String())
	}
	if selected {
		s.SelectedStages[stage] = true
	} else {
		delete(s.SelectedStages, stage)
	}
	return nil
}

// UpdateSettings replaces the session settings after validation.
// Invalid settings leave the session untouched.
func (s *Session) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.Settings = settings
	return nil
}

// SetPrompt records the user's design idea.
func (s *Session) SetPrompt(prompt string) {
	s.Prompt = strings.TrimSpace(prompt)
}

// SelectSequence records the sequence the predict stage will consume.
func (s *Session) SelectSequence(sequence string) error {
	seq := strings.TrimSpace(sequence)
	if seq == "" {
		return ErrValidation("SEQUENCE_REQUIRED", "sequence cannot be empty")
	}
	s.SelectedSequence = seq
	return nil
}

// ResetWorkflowData clears the session's workflow inputs while leaving
// SelectedStages, AutoMode and Settings untouched. Stage outputs live
// in the result store and are cleared by the session manager alongside
// this call.
func (s *Session) ResetWorkflowData() {
	s.Prompt = ""
	s.SelectedSequence = ""
}
