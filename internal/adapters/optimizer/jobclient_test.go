package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

var jobSchool = domain.Coordinates{Lon: 76.328898, Lat: 10.0482921}

func jobStudents(n int) []*domain.Student {
	out := make([]*domain.Student, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &domain.Student{
			StudentID:   uuid.New(),
			Name:        "Student",
			Coordinates: &domain.Coordinates{Lon: 76.30 + float64(i)*0.01, Lat: 10.00},
			Active:      true,
		})
	}
	return out
}

// jobServer fakes the asynchronous routing API: accepts one submission and
// reports the scripted status sequence on successive polls.
func jobServer(t *testing.T, statuses []jobStatusResponse) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	polls := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/optimization", func(w http.ResponseWriter, r *http.Request) {
		var req jobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Vehicles, 1)
		assert.Equal(t, jobSchool.CoordsToList(), req.Vehicles[0].Start)
		assert.Equal(t, jobSchool.CoordsToList(), req.Vehicles[0].End)

		json.NewEncoder(w).Encode(jobSubmitResponse{JobID: "job-123"})
	})
	mux.HandleFunc("GET /v1/optimization/job-123", func(w http.ResponseWriter, r *http.Request) {
		i := int(polls.Add(1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		json.NewEncoder(w).Encode(statuses[i])
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, polls
}

func readySolution(order []int, meters float64, seconds int64) *jobSolution {
	steps := []jobStep{{Type: "start", Arrival: 1000}}
	for _, idx := range order {
		steps = append(steps, jobStep{Type: "job", ID: idx + 1})
	}
	steps = append(steps, jobStep{Type: "end", Distance: meters, Arrival: 1000 + seconds})
	return &jobSolution{Routes: []jobRoute{{Steps: steps}}}
}

func TestJobClientOptimize(t *testing.T) {
	srv, polls := jobServer(t, []jobStatusResponse{
		{Status: jobStatusPending},
		{Status: jobStatusProcessing},
		{Status: jobStatusReady, Solution: readySolution([]int{2, 0, 1}, 12500, 1800)},
	})

	client, err := NewJobClient(srv.URL, "secret", time.Millisecond, 10)
	require.NoError(t, err)

	solution, err := client.Optimize(context.Background(), jobSchool, jobStudents(3))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 0, 1}, solution.VisitOrder)
	assert.InDelta(t, 12.5, solution.TotalDistanceKm, 1e-9)
	assert.Equal(t, float64(1800), solution.DurationSeconds)
	assert.Equal(t, int32(3), polls.Load())
}

func TestJobClientJobFailed(t *testing.T) {
	srv, _ := jobServer(t, []jobStatusResponse{
		{Status: jobStatusFailed, Error: "no route between locations"},
	})

	client, err := NewJobClient(srv.URL, "", time.Millisecond, 10)
	require.NoError(t, err)

	_, err = client.Optimize(context.Background(), jobSchool, jobStudents(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route between locations")
}

func TestJobClientPollBudgetExhausted(t *testing.T) {
	srv, _ := jobServer(t, []jobStatusResponse{{Status: jobStatusProcessing}})

	client, err := NewJobClient(srv.URL, "", time.Millisecond, 3)
	require.NoError(t, err)

	_, err = client.Optimize(context.Background(), jobSchool, jobStudents(2))
	require.ErrorIs(t, err, ErrJobTimedOut)
}

func TestJobClientContextCancelledDuringPoll(t *testing.T) {
	srv, _ := jobServer(t, []jobStatusResponse{{Status: jobStatusPending}})

	client, err := NewJobClient(srv.URL, "", time.Hour, 10)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Optimize(ctx, jobSchool, jobStudents(2))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestJobClientRetriesTransientSubmit(t *testing.T) {
	attempts := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/optimization", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(jobSubmitResponse{JobID: "job-123"})
	})
	mux.HandleFunc("GET /v1/optimization/job-123", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(jobStatusResponse{
			Status:   jobStatusReady,
			Solution: readySolution([]int{0, 1}, 4000, 600),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewJobClient(srv.URL, "", time.Millisecond, 5)
	require.NoError(t, err)

	_, err = client.Optimize(context.Background(), jobSchool, jobStudents(2))
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestJobClientRejectsBadRequestWithoutRetry(t *testing.T) {
	attempts := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "invalid payload", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	client, err := NewJobClient(srv.URL, "", time.Millisecond, 5)
	require.NoError(t, err)

	_, err = client.Optimize(context.Background(), jobSchool, jobStudents(1))
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load(), "4xx responses must not be retried")
}

func TestMapSolutionRejectsIncompleteVisits(t *testing.T) {
	_, err := mapSolution(readySolution([]int{0}, 1000, 300), 2)
	require.Error(t, err)

	_, err = mapSolution(readySolution([]int{0, 5}, 1000, 300), 2)
	require.Error(t, err)

	_, err = mapSolution(nil, 2)
	require.Error(t, err)
}

func TestJobClientNoStudents(t *testing.T) {
	client, err := NewJobClient("http://localhost:3000", "", time.Second, 1)
	require.NoError(t, err)

	_, err = client.Optimize(context.Background(), jobSchool, nil)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrJobTimedOut))
}
