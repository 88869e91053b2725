// Package utils holds the JSON response envelope shared by all handlers.
package utils

import (
	"encoding/json"
	"net/http"

	"rechnung-backend/internal/apperr"
)

// Response is the uniform envelope of every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Response{Success: true, Data: data})
}

// Error writes the envelope with the status derived from the error
// taxonomy. The error's message is user facing by construction.
func Error(w http.ResponseWriter, err error) {
	JSON(w, apperr.HTTPStatus(err), Response{Success: false, Error: err.Error()})
}

// BadRequest reports a malformed payload before it reaches a service.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, Response{Success: false, Error: message})
}
