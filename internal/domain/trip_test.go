package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("to_school"); err != nil || d != ToSchool {
		t.Fatalf("expected to_school, got %q err %v", d, err)
	}
	if d, err := ParseDirection("from_school"); err != nil || d != FromSchool {
		t.Fatalf("expected from_school, got %q err %v", d, err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}

func TestDefaultTimeWindow(t *testing.T) {
	morning := DefaultTimeWindow(ToSchool)
	if morning.Start != "07:30:00" || morning.End != "08:30:00" {
		t.Fatalf("unexpected morning window %+v", morning)
	}

	afternoon := DefaultTimeWindow(FromSchool)
	if afternoon.Start != "15:30:00" || afternoon.End != "16:30:00" {
		t.Fatalf("unexpected afternoon window %+v", afternoon)
	}
}

func routeFixture() (*Trip, *RouteOrder) {
	school := Coordinates{Lon: 76.328898, Lat: 10.0482921}
	a := &Student{StudentID: uuid.New(), Name: "Anu", Coordinates: &Coordinates{Lon: 76.30, Lat: 10.01}, Active: true}
	b := &Student{StudentID: uuid.New(), Name: "Biju", Coordinates: &Coordinates{Lon: 76.35, Lat: 10.09}, Active: true}

	trip := &Trip{TripID: uuid.New(), Direction: ToSchool, Students: []*Student{a, b}}

	idA, idB := a.StudentID, b.StudentID
	route := &RouteOrder{
		Stops: []Stop{
			{Kind: StopSchool, Coordinates: school.CoordsToList()},
			{Kind: StopStudent, Coordinates: a.Coordinates.CoordsToList(), StudentName: a.Name, StudentID: &idA},
			{Kind: StopStudent, Coordinates: b.Coordinates.CoordsToList(), StudentName: b.Name, StudentID: &idB},
			{Kind: StopSchool, Coordinates: school.CoordsToList()},
		},
		TotalDistanceKm:   12.5,
		EstimatedDuration: 1800,
	}

	return trip, route
}

func TestRouteOrderValidate(t *testing.T) {
	trip, route := routeFixture()
	if err := route.Validate(trip); err != nil {
		t.Fatalf("expected valid route, got %v", err)
	}
}

func TestRouteOrderValidateMissingStudent(t *testing.T) {
	trip, route := routeFixture()
	// Duplicate the first student over the second to keep the length.
	route.Stops[2] = route.Stops[1]
	if err := route.Validate(trip); err == nil {
		t.Fatalf("expected duplicate-student error")
	}
}

func TestRouteOrderValidateNotSchoolBounded(t *testing.T) {
	trip, route := routeFixture()
	route.Stops[len(route.Stops)-1].Kind = StopStudent
	route.Stops[len(route.Stops)-1].StudentID = route.Stops[1].StudentID
	if err := route.Validate(trip); err == nil {
		t.Fatalf("expected school-bounded error")
	}
}

func TestRouteOrderValidateWrongLength(t *testing.T) {
	trip, route := routeFixture()
	route.Stops = route.Stops[:len(route.Stops)-1]
	if err := route.Validate(trip); err == nil {
		t.Fatalf("expected stop-count error")
	}
}

func TestRouteOrderValidateNegativeMetrics(t *testing.T) {
	trip, route := routeFixture()
	route.TotalDistanceKm = -1
	if err := route.Validate(trip); err == nil {
		t.Fatalf("expected negative-distance error")
	}
}
