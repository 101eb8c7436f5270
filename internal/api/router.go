package api

import (
	"net/http"

	"github.com/aswinpradeepc/edurider-v2/internal/api/handlers"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
	"github.com/aswinpradeepc/edurider-v2/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(planner *services.Planner, sequencer *services.RouteSequencer, trips ports.TripRepository) http.Handler {
	mux := http.NewServeMux()

	planHandler := &handlers.PlanHandler{Planner: planner, Sequencer: sequencer}
	tripHandler := &handlers.TripHandler{Repo: trips}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.HandleFunc("/optimize", planHandler.Optimize)
	mux.HandleFunc("/trips", tripHandler.List)

	return loggingMiddleware(mux)
}
