package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
	"github.com/aswinpradeepc/edurider-v2/internal/ports"
)

// EligibleStudents is the outcome of the attendance gate: students who can
// be planned, plus those marked present but unplannable for lack of a
// geocoded address. The latter is a data-quality condition operators must
// fix and is reported rather than silently dropped.
type EligibleStudents struct {
	Students           []*domain.Student
	MissingCoordinates []*domain.Student
}

// GateByAttendance returns the students eligible for planning on a date:
// active, marked present, and carrying coordinates. An empty result is a
// legitimate no-op, not an error. The returned slice is sorted by student
// ID so downstream clustering sees a stable input order.
func GateByAttendance(
	ctx context.Context,
	date time.Time,
	students ports.StudentRepository,
	attendance ports.AttendanceRepository,
) (*EligibleStudents, error) {
	active, err := students.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("attendance gate: list active students: %w", err)
	}

	present, err := attendance.PresentStudentIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("attendance gate: list presence for %s: %w", date.Format("2006-01-02"), err)
	}

	out := &EligibleStudents{}
	for _, s := range active {
		if !present[s.StudentID] {
			continue
		}
		if !s.HasCoordinates() {
			out.MissingCoordinates = append(out.MissingCoordinates, s)
			continue
		}
		out.Students = append(out.Students, s)
	}

	sort.Slice(out.Students, func(i, j int) bool {
		return out.Students[i].StudentID.String() < out.Students[j].StudentID.String()
	})

	return out, nil
}
