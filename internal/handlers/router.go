package handlers

import (
	"github.com/gorilla/mux"
)

// NewRouter registers all routes of h.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/", h.Submit).Methods("POST")
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/creatures", h.CreateCreature).Methods("POST")
	return r
}
