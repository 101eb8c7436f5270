package services

import "fmt"

// CapacityPlan is the outcome of sizing a planning run: how many clusters
// to build and whether driver scarcity forced them over capacity.
type CapacityPlan struct {
	ClusterCount int
	// Clamped is set when fewer drivers are available than the ideal
	// cluster count demands.
	Clamped bool
	// OverCapacity is the number of students beyond what ClusterCount
	// trips can hold at the configured capacity (0 when not clamped).
	OverCapacity int
}

// PlanCapacity turns an eligible-student count and a driver-availability
// count into a target cluster count: ceil(eligible / capacity), clamped
// down to the number of available drivers. Clamping never silently
// enlarges trips; the excess is reported so operators see it.
func PlanCapacity(eligibleCount, capacityPerTrip, availableDrivers int) (CapacityPlan, error) {
	if capacityPerTrip <= 0 {
		return CapacityPlan{}, fmt.Errorf("plan capacity: %w", ErrInvalidCapacity)
	}
	if eligibleCount < 0 {
		return CapacityPlan{}, fmt.Errorf("plan capacity: eligible count %d is negative", eligibleCount)
	}

	if eligibleCount == 0 {
		return CapacityPlan{ClusterCount: 0}, nil
	}

	if availableDrivers == 0 {
		return CapacityPlan{}, fmt.Errorf("plan capacity: %d eligible students: %w", eligibleCount, ErrNoAvailableDrivers)
	}

	// Ceiling division.
	ideal := (eligibleCount + capacityPerTrip - 1) / capacityPerTrip

	plan := CapacityPlan{ClusterCount: ideal}
	if availableDrivers < ideal {
		plan.ClusterCount = availableDrivers
		plan.Clamped = true
		plan.OverCapacity = eligibleCount - plan.ClusterCount*capacityPerTrip
		if plan.OverCapacity < 0 {
			plan.OverCapacity = 0
		}
	}

	return plan, nil
}
