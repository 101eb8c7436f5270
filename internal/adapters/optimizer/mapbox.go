package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/platform/obs"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
)

// MapboxClient implements the RouteOptimizer port against the synchronous
// Mapbox Optimized Trips API: one GET with the full coordinate path
// (school, students, school), answer contains the optimized waypoint order
// and aggregate route metrics.
type MapboxClient struct {
	session *http.Client
	baseURL string
	token   string
	profile string
}

func NewMapboxClient(token string) (*MapboxClient, error) {
	if token == "" {
		return nil, errors.New("mapbox client: access token is empty")
	}

	return &MapboxClient{
		session: &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.mapbox.com",
		token:   token,
		profile: "mapbox/driving",
	}, nil
}

type mapboxWaypoint struct {
	WaypointIndex int `json:"waypoint_index"`
}

type mapboxTrip struct {
	// Meters and seconds.
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type mapboxResponse struct {
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Trips     []mapboxTrip     `json:"trips"`
	Waypoints []mapboxWaypoint `json:"waypoints"`
}

func (c *MapboxClient) Optimize(ctx context.Context, school domain.Coordinates, students []*domain.Student) (_ *ports.RouteSolution, err error) {
	defer obs.Time(ctx, "routing.mapbox.Optimize")(&err)

	if len(students) == 0 {
		return nil, errors.New("optimize: no students to sequence")
	}

	// Path is school;student...;school so the returned trip starts and
	// ends at the school without a roundtrip constraint.
	coords := make([]string, 0, len(students)+2)
	coords = append(coords, formatCoord(school))
	for _, s := range students {
		coords = append(coords, formatCoord(*s.Coordinates))
	}
	coords = append(coords, formatCoord(school))

	endpoint := fmt.Sprintf("%s/optimized-trips/v1/%s/%s", c.baseURL, c.profile, strings.Join(coords, ";"))

	params := url.Values{}
	params.Set("access_token", c.token)
	params.Set("source", "first")
	params.Set("destination", "last")
	params.Set("roundtrip", "false")
	params.Set("geometries", "geojson")

	resp, err := doWithRetry(ctx, c.session, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("optimize: optimized-trips request: %w", err)
	}
	defer resp.Body.Close()

	var mr mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("optimize: decode response: %w", err)
	}

	if mr.Code != "Ok" || len(mr.Trips) == 0 {
		return nil, fmt.Errorf("optimize: service rejected request: %s", mr.Message)
	}
	if len(mr.Waypoints) != len(students)+2 {
		return nil, fmt.Errorf("optimize: expected %d waypoints, got %d", len(students)+2, len(mr.Waypoints))
	}

	// Waypoints come back in input order carrying their optimized position.
	// Interior waypoint i+1 is students[i]; sorting interior positions
	// yields the visit order.
	type visit struct {
		studentIdx int
		position   int
	}
	visits := make([]visit, 0, len(students))
	for i := 1; i <= len(students); i++ {
		visits = append(visits, visit{studentIdx: i - 1, position: mr.Waypoints[i].WaypointIndex})
	}
	sort.Slice(visits, func(i, j int) bool { return visits[i].position < visits[j].position })

	out := &ports.RouteSolution{
		VisitOrder:      make([]int, 0, len(students)),
		TotalDistanceKm: mr.Trips[0].Distance / 1000.0,
		DurationSeconds: mr.Trips[0].Duration,
	}
	for _, v := range visits {
		out.VisitOrder = append(out.VisitOrder, v.studentIdx)
	}

	return out, nil
}

func formatCoord(c domain.Coordinates) string {
	return fmt.Sprintf("%f,%f", c.Lon, c.Lat)
}
