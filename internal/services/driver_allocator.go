package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// AllocateDrivers binds each group to one available driver and returns the
// allocation table: group index -> driver. The policy is a stable
// order-preserving assignment (first driver to first group). The table is
// built once per regeneration cycle, guaranteeing one group per driver and
// no driver reuse regardless of the policy behind it.
func AllocateDrivers(groups []Cluster, drivers []*domain.Driver) (map[int]*domain.Driver, error) {
	if len(drivers) < len(groups) {
		return nil, fmt.Errorf("allocate drivers: %d groups but only %d drivers", len(groups), len(drivers))
	}

	allocation := make(map[int]*domain.Driver, len(groups))
	used := make(map[uuid.UUID]bool, len(groups))

	for i := range groups {
		driver := drivers[i]
		if used[driver.DriverID] {
			return nil, fmt.Errorf("allocate drivers: driver %s appears twice in the availability snapshot", driver.DriverID)
		}
		used[driver.DriverID] = true
		allocation[i] = driver
	}

	return allocation, nil
}
