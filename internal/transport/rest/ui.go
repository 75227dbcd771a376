package rest

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var indexHTML []byte

// UI serves the single-page browser client at GET /.
func UI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(indexHTML) //nolint:errcheck
}
