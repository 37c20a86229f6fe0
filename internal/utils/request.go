package utils

import (
	"encoding/json"
	"net/http"
)

// DecodeJSONRequest decodes the request body into v, writing a 400 response
// on malformed JSON. Callers should return immediately on error.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return err
	}
	return nil
}
