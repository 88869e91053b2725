package handlers

import (
	"net/http"

	"rechnung-backend/internal/services"
	"rechnung-backend/pkg/utils"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	data, err := h.dashboard.Stats(r.Context(), owner)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, data)
}
