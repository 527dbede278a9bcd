package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/universa-bio/origin/internal/core"
)

// resolveStructure picks the requested variant from the stored
// prediction. An explicit "relaxed" request fails when only the raw
// structure exists; the default prefers whatever the display settings
// ask for, degrading to raw.
func resolveStructure(pred core.StructurePrediction, variant string, settings core.DisplaySettings) (string, error) {
	switch variant {
	case "raw":
		return pred.Raw, nil
	case "relaxed":
		if !pred.HasRelaxed() {
			return "", core.ErrState("RELAXED_UNAVAILABLE", "no relaxed structure available")
		}
		return pred.Relaxed, nil
	case "":
		return pred.Best(settings.Variant == core.StructureVariantRelaxed), nil
	default:
		return "", core.ErrValidation("VARIANT_INVALID", "unknown structure variant: "+variant)
	}
}

// handleGetStructure returns the predicted structure as PDB text.
// The variant query parameter selects raw or relaxed; without it the
// session's display settings decide.
func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	pred, found := ctrl.Store().Prediction()
	if !found {
		respondError(w, http.StatusNotFound, "no structure prediction available")
		return
	}

	pdb, err := resolveStructure(pred, r.URL.Query().Get("variant"), ctrl.DisplaySettings())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "chemical/x-pdb")
	w.Header().Set("Content-Disposition", `attachment; filename="predicted_structure.pdb"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(pdb))
}

// handleExportStructure writes the predicted structure to a file on
// the server host. The write is atomic so a concurrent reader never
// sees a partial PDB.
func (s *Server) handleExportStructure(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controllerFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Path    string `json:"path"`
		Variant string `json:"variant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		respondError(w, http.StatusUnprocessableEntity, "path cannot be empty")
		return
	}

	pred, found := ctrl.Store().Prediction()
	if !found {
		respondError(w, http.StatusNotFound, "no structure prediction available")
		return
	}

	pdb, err := resolveStructure(pred, req.Variant, ctrl.DisplaySettings())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	path = filepath.Clean(path)
	if err := renameio.WriteFile(path, []byte(pdb), 0o644); err != nil {
		s.logger.Error("structure export failed", "path", path, "error", err)
		respondError(w, http.StatusInternalServerError, "could not write structure file")
		return
	}

	s.logger.Info("structure exported", "path", path, "bytes", len(pdb))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"path":  path,
		"bytes": len(pdb),
	})
}
