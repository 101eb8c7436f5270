package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/platform/obs"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
)

// Optimization job lifecycle as reported by the routing service.
const (
	jobStatusPending    = "pending"
	jobStatusProcessing = "processing"
	jobStatusReady      = "ready"
	jobStatusFailed     = "failed"
)

// ErrJobTimedOut is returned when a job does not become ready within the
// configured poll budget.
var ErrJobTimedOut = errors.New("optimization job did not complete in time")

// JobClient implements the RouteOptimizer port against an asynchronous
// job-based routing API: submit one vehicle starting and ending at the
// school with one service per student, then poll the job at a fixed
// interval until it reports ready or the poll budget runs out. The context
// is honored at every poll boundary.
type JobClient struct {
	session *http.Client
	baseURL string
	apiKey  string

	pollInterval time.Duration
	maxPolls     int
}

func NewJobClient(baseURL, apiKey string, pollInterval time.Duration, maxPolls int) (*JobClient, error) {
	if baseURL == "" {
		return nil, errors.New("routing job client: base URL is empty")
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 24
	}

	return &JobClient{
		session:      &http.Client{Timeout: 15 * time.Second},
		baseURL:      baseURL,
		apiKey:       apiKey,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}, nil
}

type jobVehicle struct {
	ID    int       `json:"id"`
	Start []float64 `json:"start"`
	End   []float64 `json:"end"`
}

type jobService struct {
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
}

type jobRequest struct {
	Vehicles  []jobVehicle `json:"vehicles"`
	Services  []jobService `json:"services"`
	Objective string       `json:"objective"`
}

type jobSubmitResponse struct {
	JobID string `json:"job_id"`
}

type jobStep struct {
	Type string `json:"type"`
	// Service id for "job" steps; matches the submitted service.
	ID int `json:"id"`
	// Cumulative distance in meters at this stop.
	Distance float64 `json:"distance"`
	// Arrival as unix seconds.
	Arrival int64 `json:"arrival"`
}

type jobRoute struct {
	Steps []jobStep `json:"steps"`
}

type jobSolution struct {
	Routes []jobRoute `json:"routes"`
}

type jobStatusResponse struct {
	Status   string       `json:"status"`
	Error    string       `json:"error"`
	Solution *jobSolution `json:"solution"`
}

func (c *JobClient) Optimize(ctx context.Context, school domain.Coordinates, students []*domain.Student) (_ *ports.RouteSolution, err error) {
	defer obs.Time(ctx, "routing.job.Optimize")(&err)

	if len(students) == 0 {
		return nil, errors.New("optimize: no students to sequence")
	}

	jobID, err := c.submit(ctx, school, students)
	if err != nil {
		return nil, fmt.Errorf("optimize: submit job: %w", err)
	}

	status, err := c.poll(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("optimize: job %s: %w", jobID, err)
	}

	solution, err := mapSolution(status.Solution, len(students))
	if err != nil {
		return nil, fmt.Errorf("optimize: job %s: %w", jobID, err)
	}

	return solution, nil
}

func (c *JobClient) submit(ctx context.Context, school domain.Coordinates, students []*domain.Student) (string, error) {
	req := jobRequest{
		Vehicles:  []jobVehicle{{ID: 1, Start: school.CoordsToList(), End: school.CoordsToList()}},
		Services:  make([]jobService, 0, len(students)),
		Objective: "min-duration",
	}
	// Service ids are 1-based; id i+1 maps back to students[i].
	for i, s := range students {
		req.Services = append(req.Services, jobService{ID: i + 1, Location: s.Coordinates.CoordsToList()})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal job request: %w", err)
	}

	endpoint := c.baseURL + "/v1/optimization"
	resp, err := doWithRetry(ctx, c.session, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var submitted jobSubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if submitted.JobID == "" {
		return "", errors.New("submit response missing job_id")
	}

	return submitted.JobID, nil
}

// poll fetches job status at the configured interval until the job is
// ready, fails, or the poll budget is exhausted.
func (c *JobClient) poll(ctx context.Context, jobID string) (*jobStatusResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/optimization/%s", c.baseURL, jobID)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < c.maxPolls; attempt++ {
		status, err := c.fetchStatus(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("fetch status: %w", err)
		}

		switch status.Status {
		case jobStatusReady:
			return status, nil
		case jobStatusFailed:
			return nil, fmt.Errorf("job failed: %s", status.Error)
		case jobStatusPending, jobStatusProcessing:
			// Keep polling.
		default:
			return nil, fmt.Errorf("unexpected job status %q", status.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return nil, ErrJobTimedOut
}

func (c *JobClient) fetchStatus(ctx context.Context, endpoint string) (*jobStatusResponse, error) {
	resp, err := doWithRetry(ctx, c.session, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status jobStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	return &status, nil
}

// mapSolution turns a completed job's stop sequence into a RouteSolution:
// visit order from the job steps, total distance from the final odometer
// reading, duration from the elapsed time between first and last stop.
func mapSolution(solution *jobSolution, studentCount int) (*ports.RouteSolution, error) {
	if solution == nil || len(solution.Routes) != 1 {
		return nil, errors.New("solution missing single vehicle route")
	}

	steps := solution.Routes[0].Steps
	if len(steps) < 2 {
		return nil, fmt.Errorf("solution route has %d steps", len(steps))
	}

	out := &ports.RouteSolution{VisitOrder: make([]int, 0, studentCount)}
	for _, step := range steps {
		if step.Type != "job" {
			continue
		}
		idx := step.ID - 1
		if idx < 0 || idx >= studentCount {
			return nil, fmt.Errorf("solution references unknown service id %d", step.ID)
		}
		out.VisitOrder = append(out.VisitOrder, idx)
	}

	if len(out.VisitOrder) != studentCount {
		return nil, fmt.Errorf("solution visits %d of %d services", len(out.VisitOrder), studentCount)
	}

	last := steps[len(steps)-1]
	out.TotalDistanceKm = last.Distance / 1000.0
	out.DurationSeconds = float64(last.Arrival - steps[0].Arrival)
	if out.TotalDistanceKm < 0 || out.DurationSeconds < 0 {
		return nil, errors.New("solution metrics are negative")
	}

	return out, nil
}

func (c *JobClient) newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
