package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/universa-bio/origin/internal/core"
)

// handleRun starts the workflow: the earliest selected stage is
// triggered and the pending chain drained. With auto mode on and all
// stages selected this runs the full pipeline in one call.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	var first core.Stage
	for _, stage := range core.AllStages() {
		if ctrl.StageSelected(stage) {
			first = stage
			break
		}
	}
	if first == "" {
		respondError(w, http.StatusUnprocessableEntity, "no stages selected")
		return
	}

	reports, err := ctrl.TriggerAndDrain(r.Context(), first)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"state":   sessionState(ctrl),
	})
}

// handleTriggerStage triggers a single stage manually and drains any
// follow-up triggers the auto-chain produces.
func (s *Server) handleTriggerStage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	stage, err := core.ParseStage(chi.URLParam(r, "stage"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	reports, err := ctrl.TriggerAndDrain(r.Context(), stage)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"state":   sessionState(ctrl),
	})
}

// handleGetResult returns the stored output of one stage.
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	stage, err := core.ParseStage(chi.URLParam(r, "stage"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	output, found := ctrl.Store().Get(stage)
	if !found {
		respondError(w, http.StatusNotFound, "no result for stage "+stage.String())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stage":  stage,
		"result": output,
	})
}
