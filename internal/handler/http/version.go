package http

import (
	"net/http"
)

// alive is the liveness probe. It answers as soon as the process serves
// traffic and deliberately touches no store.
func (h *Handler) alive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive: " + h.version))
}
