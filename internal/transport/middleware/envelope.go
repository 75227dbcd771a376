package middleware

import (
	"encoding/json"
	"net/http"
)

// writeFailure writes the {success:false, error} envelope used by the API.
func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message}) //nolint:errcheck
}
