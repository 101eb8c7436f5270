package domain

import "github.com/google/uuid"

// Represents a student enrolled for bus transport.
// Coordinates are optional: a student without a geocoded home address
// cannot be clustered and is excluded from planning with a data-quality
// warning rather than silently dropped.
type Student struct {
	StudentID   uuid.UUID
	Name        string
	Coordinates *Coordinates
	Active      bool
}

// HasCoordinates reports whether the student can take part in spatial
// clustering.
func (s *Student) HasCoordinates() bool { return s.Coordinates != nil }
