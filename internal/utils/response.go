package utils

import (
	"encoding/json"
	"net/http"

	"tripvote-backend/internal/dto"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a JSON error body with a human-readable detail
func WriteErrorResponse(w http.ResponseWriter, status int, detail string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Detail: detail})
}

// WriteValidationErrors writes a 400 response carrying field-level messages
func WriteValidationErrors(w http.ResponseWriter, errs map[string]string) {
	WriteJSONResponse(w, http.StatusBadRequest, dto.ErrorResponse{
		Detail: "Validation error",
		Errors: errs,
	})
}
