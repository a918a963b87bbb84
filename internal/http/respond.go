package httpx

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeVerifyError sends a verification failure with an explicit validity
// flag, matching the authority's verify response shape.
func writeVerifyError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"valid": false, "message": msg})
}
