package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON is the single exit path for JSON responses. The payload is
// streamed with an Encoder; a nil payload writes only the status line.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status line is already out; nothing to do but log.
		log.Printf("Failed to encode response payload: %v", err)
	}
}

// writeError sends the {"error": ...} shape every endpoint uses for
// failures.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
