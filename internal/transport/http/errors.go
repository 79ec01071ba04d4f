package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/go-openapi/errors"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/service"
)

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeValidationErrors(w http.ResponseWriter, errs domain.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, ValidationError{Messages: errs.Errors()})
}

// writeError maps service errors to API errors. Entity validation failures
// are rendered as a ValidationError, everything else as {code, message}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve domain.ValidationErrors
	if errors.As(err, &ve) {
		writeValidationErrors(w, ve)
		return
	}

	var we *domain.WriteError
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrDimensionNotFound),
		errors.Is(err, domain.ErrUnknownSettingsKey):
		apierrors.ServeError(w, r, apierrors.NotFound("%s", err.Error()))
	case errors.Is(err, domain.ErrDuplicateSlug):
		apierrors.ServeError(w, r, apierrors.New(http.StatusConflict, "%s", err.Error()))
	case errors.Is(err, domain.ErrEmptyPatch), errors.Is(err, service.ErrInvalidSettings):
		apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "%s", err.Error()))
	case errors.As(err, &we):
		apierrors.ServeError(w, r, apierrors.New(http.StatusInternalServerError, "%s", we.Error()))
	default:
		apierrors.ServeError(w, r, err)
	}
}
