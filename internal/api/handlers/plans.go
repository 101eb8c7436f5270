package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aswinpradeepc/edurider-v2/internal/api/dto"
	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/services"
)

type PlanHandler struct {
	Planner   *services.Planner
	Sequencer *services.RouteSequencer
}

// Plan triggers a regeneration of all trips for one (date, direction).
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "direction must be to_school or from_school")
		return
	}

	result, err := h.Planner.Plan(r.Context(), date, direction, domain.DefaultTimeWindow(direction))
	if err != nil {
		if errors.Is(err, services.ErrNoAvailableDrivers) {
			writeError(w, r, http.StatusConflict, "no drivers available for eligible students")
			return
		}
		log.Error().Err(err).Msg("Plan trips failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.PlanResponse{
		Date:             req.Date,
		Direction:        string(direction),
		EligibleStudents: result.EligibleCount,
		TripsCreated:     len(result.Trips),
		Trips:            make([]dto.TripResponse, 0, len(result.Trips)),
	}
	for _, s := range result.ExcludedStudents {
		res.ExcludedStudents = append(res.ExcludedStudents, dto.ExcludedStudentResponse{
			StudentID: s.StudentID.String(),
			Name:      s.Name,
		})
	}
	for _, warn := range result.Warnings {
		res.Warnings = append(res.Warnings, dto.WarningResponse{
			Kind:    string(warn.Kind),
			Message: warn.Message,
		})
	}
	for _, t := range result.Trips {
		res.Trips = append(res.Trips, dto.NewTripResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Optimize sequences a route for every trip of the given date.
func (h *PlanHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	result, err := h.Sequencer.OptimizeDate(r.Context(), date)
	if err != nil {
		log.Error().Err(err).Msg("Optimize trips failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeResponse{
		Date:      req.Date,
		Sequenced: result.Sequenced,
		Degraded:  result.Degraded,
	})
}
