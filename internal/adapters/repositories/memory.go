package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// In-memory implementations of the repository ports, mirroring the
// Postgres adapters. The planning engine is wired against these in tests
// and local dry runs.

type MemoryStudentRepository struct {
	mu       sync.RWMutex
	students map[uuid.UUID]*domain.Student
}

func NewMemoryStudentRepository(students ...*domain.Student) *MemoryStudentRepository {
	r := &MemoryStudentRepository{students: make(map[uuid.UUID]*domain.Student)}
	for _, s := range students {
		r.students[s.StudentID] = s
	}
	return r
}

func (r *MemoryStudentRepository) Add(s *domain.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[s.StudentID] = s
}

func (r *MemoryStudentRepository) ListActive(ctx context.Context) ([]*domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Student, 0, len(r.students))
	for _, s := range r.students {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StudentID.String() < out[j].StudentID.String()
	})
	return out, nil
}

type MemoryDriverRepository struct {
	mu      sync.RWMutex
	drivers map[uuid.UUID]*domain.Driver
}

func NewMemoryDriverRepository(drivers ...*domain.Driver) *MemoryDriverRepository {
	r := &MemoryDriverRepository{drivers: make(map[uuid.UUID]*domain.Driver)}
	for _, d := range drivers {
		r.drivers[d.DriverID] = d
	}
	return r
}

func (r *MemoryDriverRepository) Add(d *domain.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[d.DriverID] = d
}

// Ordered by name then ID, matching the Postgres adapter.
func (r *MemoryDriverRepository) ListAvailable(ctx context.Context) ([]*domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		if d.Allocatable() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].DriverID.String() < out[j].DriverID.String()
	})
	return out, nil
}

type MemoryAttendanceRepository struct {
	mu sync.RWMutex
	// One record per (date, student), keyed the way the attendance table
	// is uniquely constrained.
	records map[string]map[uuid.UUID]*domain.AttendanceRecord
}

func NewMemoryAttendanceRepository() *MemoryAttendanceRepository {
	return &MemoryAttendanceRepository{records: make(map[string]map[uuid.UUID]*domain.AttendanceRecord)}
}

func (r *MemoryAttendanceRepository) MarkPresent(studentID uuid.UUID, date time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := date.Format("2006-01-02")
	if r.records[key] == nil {
		r.records[key] = make(map[uuid.UUID]*domain.AttendanceRecord)
	}
	r.records[key][studentID] = &domain.AttendanceRecord{
		AttendanceID: uuid.New(),
		StudentID:    studentID,
		Date:         date,
		Presence:     true,
	}
}

func (r *MemoryAttendanceRepository) PresentStudentIDs(ctx context.Context, date time.Time) (map[uuid.UUID]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uuid.UUID]bool)
	for id, rec := range r.records[date.Format("2006-01-02")] {
		if rec.Presence {
			out[id] = true
		}
	}
	return out, nil
}

type MemoryTripRepository struct {
	mu    sync.RWMutex
	trips map[uuid.UUID]*domain.Trip

	// ReplaceErr makes the next ReplaceForDate fail before committing,
	// for exercising the all-or-nothing contract.
	ReplaceErr error
}

func NewMemoryTripRepository() *MemoryTripRepository {
	return &MemoryTripRepository{trips: make(map[uuid.UUID]*domain.Trip)}
}

func (r *MemoryTripRepository) ReplaceForDate(ctx context.Context, date time.Time, direction domain.Direction, trips []*domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ReplaceErr != nil {
		// Fail without touching stored state: the previous trips survive,
		// matching the transactional Postgres behavior.
		return r.ReplaceErr
	}

	day := date.Format("2006-01-02")
	for id, t := range r.trips {
		if t.Date.Format("2006-01-02") == day && t.Direction == direction {
			delete(r.trips, id)
		}
	}
	for _, t := range trips {
		r.trips[t.TripID] = t
	}
	return nil
}

func (r *MemoryTripRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := date.Format("2006-01-02")
	out := make([]*domain.Trip, 0, 8)
	for _, t := range r.trips {
		if t.Date.Format("2006-01-02") == day {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Direction != out[j].Direction {
			return out[i].Direction == domain.ToSchool
		}
		return out[i].TripID.String() < out[j].TripID.String()
	})
	return out, nil
}

func (r *MemoryTripRepository) UpdateRouteOrder(ctx context.Context, tripID uuid.UUID, route *domain.RouteOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok {
		return &TripNotFoundError{TripID: tripID}
	}
	t.RouteOrder = route
	return nil
}

// TripNotFoundError reports an update against a trip that no longer exists.
type TripNotFoundError struct{ TripID uuid.UUID }

func (e *TripNotFoundError) Error() string {
	return "trip not found: " + e.TripID.String()
}
