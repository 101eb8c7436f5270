package domain

import (
	"time"

	"github.com/google/uuid"
)

// Records whether a student was marked present on a specific date.
// One record per (student, date).
type AttendanceRecord struct {
	AttendanceID uuid.UUID
	StudentID    uuid.UUID
	Date         time.Time
	Presence     bool
}
