package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Port: a boundary for reading attendance records.
type AttendanceRepository interface {
	// Return the set of student IDs marked present on the given date.
	PresentStudentIDs(ctx context.Context, date time.Time) (map[uuid.UUID]bool, error)
}
