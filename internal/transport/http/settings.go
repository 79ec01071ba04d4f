package http

import (
	"encoding/json"
	"io"
	"net/http"

	apierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
)

type SettingsHandler struct {
	settings Settings
	logger   hclog.Logger
}

func NewSettingsHandler(settings Settings, log hclog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   log,
	}
}

// GetSettings handles GET /settings/{key}
//
// swagger:route GET /settings/{key} settings getSettings
//
// Returns a settings document, or its defaults when none is saved.
//
// Responses:
//
//	200: settingsResponse
//	404: errorResponse
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	value, err := h.settings.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, value)
}

// PutSettings handles PUT /settings/{key}
//
// swagger:route PUT /settings/{key} settings putSettings
//
// Replaces a settings document.
//
// Responses:
//
//	200: settingsResponse
//	400: errorResponse
//	404: errorResponse
//	422: errorResponse
//	500: errorResponse
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		apierrors.ServeError(w, r, apierrors.New(http.StatusBadRequest, "Unable to read request body"))
		return
	}

	if key == domain.SettingsStore {
		if verr := validateStoreEmail(raw); verr != nil {
			apierrors.ServeError(w, r, verr)
			return
		}
	}

	saved, err := h.settings.Put(r.Context(), key, json.RawMessage(raw))
	if err != nil {
		h.logger.Error("Error saving settings", "key", key, "error", err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// validateStoreEmail checks the contact e-mail of a store document. Malformed
// documents are left for the settings service to reject.
func validateStoreEmail(raw []byte) error {
	var doc struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Email == "" {
		return nil
	}

	if verr := validate.FormatOf("email", "body", "email", doc.Email, strfmt.Default); verr != nil {
		return verr
	}
	return nil
}
