package domain

import "github.com/google/uuid"

// DriverStatus is the operational state of a driver. Planning only ever
// reads it; status transitions belong to the trip-operations layer.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnTrip    DriverStatus = "on_trip"
	DriverOffline   DriverStatus = "offline"
	DriverOnLeave   DriverStatus = "on_leave"
)

// Represents a bus driver.
type Driver struct {
	DriverID uuid.UUID
	Name     string
	BusNo    string
	Status   DriverStatus
	Active   bool
}

// Allocatable reports whether the driver may be bound to a planned trip.
func (d *Driver) Allocatable() bool {
	return d.Active && d.Status == DriverAvailable
}
