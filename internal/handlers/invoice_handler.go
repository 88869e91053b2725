package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"rechnung-backend/internal/models"
	"rechnung-backend/internal/services"
	"rechnung-backend/pkg/utils"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
}

func NewInvoiceHandler(invoices *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	var in models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "Ungültige Anfrage")
		return
	}

	invoice, err := h.invoices.Create(r.Context(), owner, &in)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	status := models.InvoiceStatus(r.URL.Query().Get("status"))

	invoices, err := h.invoices.List(r.Context(), owner, status)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	invoice, err := h.invoices.Get(r.Context(), owner, id)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "Ungültige Anfrage")
		return
	}

	invoice, err := h.invoices.UpdateStatus(r.Context(), owner, id, req.Status)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	if err := h.invoices.Delete(r.Context(), owner, id); err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, nil)
}

// ExportPDF streams the rendered invoice as a file download.
func (h *InvoiceHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	data, filename, err := h.invoices.ExportPDF(r.Context(), owner, id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}
