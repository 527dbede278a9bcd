package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/universa-bio/origin/internal/core"
	"github.com/universa-bio/origin/internal/service/workflow"
)

// sessionStateResponse is the full session view handed to clients:
// the session itself plus the live status of each stage.
type sessionStateResponse struct {
	Session core.Session                      `json:"session"`
	Stages  map[core.Stage]stageStateResponse `json:"stages"`
}

type stageStateResponse struct {
	Status    core.StageStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
	HasResult bool             `json:"has_result"`
}

func sessionState(ctrl *workflow.Controller) sessionStateResponse {
	stages := make(map[core.Stage]stageStateResponse, len(core.AllStages()))
	for _, stage := range core.AllStages() {
		_, hasResult := ctrl.Store().Get(stage)
		stages[stage] = stageStateResponse{
			Status:    ctrl.Status(stage),
			Error:     ctrl.LastError(stage),
			HasResult: hasResult,
		}
	}
	// A snapshot, not the live session: encoding must not race with a
	// drain writing the selected sequence.
	return sessionStateResponse{Session: ctrl.SessionSnapshot(), Stages: stages}
}

// controllerFromRequest resolves the session ID in the URL to its
// controller, writing the error response itself on failure.
func (s *Server) controllerFromRequest(w http.ResponseWriter, r *http.Request) (*workflow.Controller, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	ctrl, err := s.manager.Get(sessionID)
	if err != nil {
		respondDomainError(w, err)
		return nil, false
	}
	return ctrl, true
}

// handleLogin creates a session for the given username.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl, err := s.manager.Login(req.Username)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sessionState(ctrl))
}

// handleGetSession returns the session and its stage statuses.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sessionState(ctrl))
}

// handleLogout removes the session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.manager.Logout(sessionID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleReset clears workflow state while preserving settings.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.manager.Reset(sessionID); err != nil {
		respondDomainError(w, err)
		return
	}
	ctrl, err := s.manager.Get(sessionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionState(ctrl))
}

// handleUpdateWorkspace updates stage selection and the auto-mode flag.
// Omitted fields keep their current value.
func (s *Server) handleUpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		SelectedStages map[string]bool `json:"selected_stages"`
		AutoMode       *bool           `json:"auto_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for name, selected := range req.SelectedStages {
		stage, err := core.ParseStage(name)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if err := ctrl.SelectStage(stage, selected); err != nil {
			respondDomainError(w, err)
			return
		}
	}
	if req.AutoMode != nil {
		ctrl.SetAutoMode(*req.AutoMode)
	}
	respondJSON(w, http.StatusOK, sessionState(ctrl))
}

// handleUpdateSettings replaces the session settings.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	var settings core.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ctrl.UpdateSettings(settings); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionState(ctrl))
}

// handleSetPrompt records the user's design idea.
func (s *Server) handleSetPrompt(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctrl.SetPrompt(req.Prompt)
	respondJSON(w, http.StatusOK, sessionState(ctrl))
}

// handleSelectSequence overrides which candidate sequence the predict
// stage will consume.
func (s *Server) handleSelectSequence(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Sequence string `json:"sequence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ctrl.SelectSequence(req.Sequence); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionState(ctrl))
}
