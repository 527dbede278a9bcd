package api

import (
	"errors"
	"net/http"

	"github.com/universa-bio/origin/internal/core"
)

func httpStatusForDomainError(err error) (int, bool) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return 0, false
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusUnprocessableEntity, true
	case core.ErrCatState:
		return http.StatusNotFound, true
	case core.ErrCatConfig:
		return http.StatusConflict, true
	case core.ErrCatTimeout:
		return http.StatusGatewayTimeout, true
	case core.ErrCatUpstream, core.ErrCatMalformed, core.ErrCatEmptyResult:
		return http.StatusBadGateway, true
	default:
		return http.StatusInternalServerError, true
	}
}

// respondDomainError maps a domain error to its HTTP status, falling
// back to 500 for unknown error types.
func respondDomainError(w http.ResponseWriter, err error) {
	if status, ok := httpStatusForDomainError(err); ok {
		respondError(w, status, core.UserMessage(err))
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
