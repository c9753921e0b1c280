// Package handlers holds the JSON response helpers shared by every endpoint.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response.
// Error is a stable machine-readable code such as "ListingNotFound".
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// WriteError writes an ErrorResponse
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: code, Message: message})
}
