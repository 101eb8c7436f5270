package dto

import "github.com/aswinpradeepc/edurider-v2/internal/domain"

type StopResponse struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	StudentName string    `json:"student_name,omitempty"`
}

type RouteOrderResponse struct {
	Stops             []StopResponse `json:"stops"`
	TotalDistance     float64        `json:"total_distance"`
	EstimatedDuration float64        `json:"estimated_duration"`
	Degraded          bool           `json:"degraded,omitempty"`
}

type TripResponse struct {
	TripID     string              `json:"id"`
	Date       string              `json:"date"`
	Direction  string              `json:"direction"`
	StartTime  string              `json:"start_time"`
	EndTime    string              `json:"end_time"`
	Status     string              `json:"status"`
	DriverID   string              `json:"driver_id"`
	StudentIDs []string            `json:"student_ids"`
	RouteOrder *RouteOrderResponse `json:"route_order,omitempty"`
}

type ListTripsResponse struct {
	Trips []TripResponse `json:"trips"`
}

// NewTripResponse maps a domain trip to its wire shape.
func NewTripResponse(t *domain.Trip) TripResponse {
	res := TripResponse{
		TripID:     t.TripID.String(),
		Date:       t.Date.Format("2006-01-02"),
		Direction:  string(t.Direction),
		StartTime:  t.TimeWindow.Start,
		EndTime:    t.TimeWindow.End,
		Status:     string(t.Status),
		DriverID:   t.DriverID.String(),
		StudentIDs: make([]string, 0, len(t.Students)),
	}
	for _, s := range t.Students {
		res.StudentIDs = append(res.StudentIDs, s.StudentID.String())
	}

	if t.RouteOrder != nil {
		route := &RouteOrderResponse{
			Stops:             make([]StopResponse, 0, len(t.RouteOrder.Stops)),
			TotalDistance:     t.RouteOrder.TotalDistanceKm,
			EstimatedDuration: t.RouteOrder.EstimatedDuration,
			Degraded:          t.RouteOrder.Degraded,
		}
		for _, stop := range t.RouteOrder.Stops {
			route.Stops = append(route.Stops, StopResponse{
				Type:        string(stop.Kind),
				Coordinates: stop.Coordinates,
				StudentName: stop.StudentName,
			})
		}
		res.RouteOrder = route
	}

	return res
}
