package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/api/dto"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
)

// TripHandler exposes read-only trip retrieval endpoints.
type TripHandler struct {
	Repo ports.TripRepository
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
		return
	}

	trips, err := h.Repo.ListByDate(r.Context(), date)
	if err != nil {
		log.Error().Err(err).Msg("List trips failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListTripsResponse{Trips: make([]dto.TripResponse, 0, len(trips))}
	for _, t := range trips {
		res.Trips = append(res.Trips, dto.NewTripResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}
