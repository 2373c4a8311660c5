package api

import "net/http"

func RegisterRoutes(mux *http.ServeMux, h *Handler) http.Handler {
	// Clipboard APIs
	clipboard := func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListItems(w, r)
		case http.MethodPost:
			h.SubmitItem(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			writeError(w, ErrMethodNotAllowed)
		}
	}
	mux.HandleFunc("/api/clipboard", clipboard)
	mux.HandleFunc("/items", clipboard)

	// Observability APIs
	mux.HandleFunc("/metrics", h.GetMetrics)
	mux.HandleFunc("/health", h.GetHealth)
	if h.prometheus != nil {
		mux.Handle("/metrics/prometheus", h.prometheus)
	}

	// Admin APIs
	mux.HandleFunc("/admin/logs", h.GetLogs)

	// Middlewares
	return Chain(
		mux,
		h.RequestIDMiddleware,
		h.LoggingMiddleware,
		h.RecoveryMiddleware,
	)
}
