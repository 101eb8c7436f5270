package ports

import (
	"context"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Port: a boundary for reading Student entities. Student lifecycle is owned
// by the CRUD layer; the planning engine only reads.
type StudentRepository interface {
	// Return all active students.
	ListActive(ctx context.Context) ([]*domain.Student, error)
}
