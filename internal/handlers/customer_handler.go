package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/middleware"
	"rechnung-backend/internal/models"
	"rechnung-backend/internal/services"
	"rechnung-backend/pkg/utils"
)

type CustomerHandler struct {
	customers *services.CustomerService
}

func NewCustomerHandler(customers *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func ownerID(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		return uuid.Nil, apperr.ErrUnauthenticated
	}
	return id, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperr.ErrNotFound
	}
	return id, nil
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	var in models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "Ungültige Anfrage")
		return
	}

	customer, err := h.customers.Create(r.Context(), owner, &in)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	customers, err := h.customers.List(r.Context(), owner)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	customer, err := h.customers.Get(r.Context(), owner, id)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var in models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "Ungültige Anfrage")
		return
	}

	customer, err := h.customers.Update(r.Context(), owner, id, &in)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.customers.Delete(r.Context(), owner, id); err != nil {
		utils.Error(w, err)
		return
	}
	utils.Success(w, http.StatusOK, nil)
}
