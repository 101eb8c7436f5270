package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

func TestAllocateDrivers(t *testing.T) {
	groups := []Cluster{
		{Members: []int{0, 1}},
		{Members: []int{2}},
	}
	drivers := []*domain.Driver{
		{DriverID: uuid.New(), Name: "Ravi", Status: domain.DriverAvailable, Active: true},
		{DriverID: uuid.New(), Name: "Suresh", Status: domain.DriverAvailable, Active: true},
		{DriverID: uuid.New(), Name: "Thomas", Status: domain.DriverAvailable, Active: true},
	}

	allocation, err := AllocateDrivers(groups, drivers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allocation) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocation))
	}
	if allocation[0].DriverID != drivers[0].DriverID || allocation[1].DriverID != drivers[1].DriverID {
		t.Fatalf("expected order-preserving assignment")
	}
}

func TestAllocateDriversNoReuse(t *testing.T) {
	groups := []Cluster{{Members: []int{0}}, {Members: []int{1}}, {Members: []int{2}}}
	drivers := []*domain.Driver{
		{DriverID: uuid.New(), Name: "Ravi"},
		{DriverID: uuid.New(), Name: "Suresh"},
		{DriverID: uuid.New(), Name: "Thomas"},
	}

	allocation, err := AllocateDrivers(groups, drivers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	used := make(map[uuid.UUID]bool)
	for _, d := range allocation {
		if used[d.DriverID] {
			t.Fatalf("driver %s allocated twice", d.DriverID)
		}
		used[d.DriverID] = true
	}
}

func TestAllocateDriversTooFew(t *testing.T) {
	groups := []Cluster{{Members: []int{0}}, {Members: []int{1}}}
	drivers := []*domain.Driver{{DriverID: uuid.New(), Name: "Ravi"}}

	if _, err := AllocateDrivers(groups, drivers); err == nil {
		t.Fatalf("expected error when groups outnumber drivers")
	}
}

func TestAllocateDriversDuplicateSnapshot(t *testing.T) {
	id := uuid.New()
	groups := []Cluster{{Members: []int{0}}, {Members: []int{1}}}
	drivers := []*domain.Driver{
		{DriverID: id, Name: "Ravi"},
		{DriverID: id, Name: "Ravi"},
	}

	if _, err := AllocateDrivers(groups, drivers); err == nil {
		t.Fatalf("expected error for a duplicated driver in the snapshot")
	}
}
