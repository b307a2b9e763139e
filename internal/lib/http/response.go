package http

import (
	"encoding/json"
	"net/http"
)

type H map[string]any

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(body)
}

// WriteJSONError writes a short reason. Details must never carry internal
// error text for authentication or upstream failures.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	_ = WriteJSON(w, status, jsonError{Error: message, Details: details})
}
