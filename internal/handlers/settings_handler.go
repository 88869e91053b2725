package handlers

import (
	"encoding/json"
	"net/http"

	"rechnung-backend/internal/models"
	"rechnung-backend/internal/services"
	"rechnung-backend/pkg/utils"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	settings, err := h.settings.Get(r.Context(), owner)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	var in models.SettingsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "Ungültige Anfrage")
		return
	}

	settings, err := h.settings.Save(r.Context(), owner, &in)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, settings)
}
