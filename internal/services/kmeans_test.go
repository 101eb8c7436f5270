package services

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Three well-separated neighborhoods around a town center.
func neighborhoods(perCluster int) []domain.Coordinates {
	rng := rand.New(rand.NewSource(7))
	centers := []domain.Coordinates{
		{Lon: 76.30, Lat: 10.00},
		{Lon: 76.40, Lat: 10.10},
		{Lon: 76.20, Lat: 10.20},
	}

	var points []domain.Coordinates
	for _, c := range centers {
		for i := 0; i < perCluster; i++ {
			points = append(points, domain.Coordinates{
				Lon: c.Lon + rng.Float64()*0.01,
				Lat: c.Lat + rng.Float64()*0.01,
			})
		}
	}
	return points
}

func TestClusterCoordinatesPartition(t *testing.T) {
	points := neighborhoods(20)

	clusters, err := ClusterCoordinates(points, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(clusters))
	}

	seen := make(map[int]bool, len(points))
	for _, c := range clusters {
		if len(c.Members) == 0 {
			t.Fatalf("cluster with empty membership")
		}
		for _, idx := range c.Members {
			if seen[idx] {
				t.Fatalf("point %d assigned twice", idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != len(points) {
		t.Fatalf("expected %d assigned points, got %d", len(points), len(seen))
	}

	// Well-separated neighborhoods must not be split across clusters.
	for _, c := range clusters {
		if len(c.Members) != 20 {
			t.Fatalf("expected 20 members per neighborhood, got %d", len(c.Members))
		}
	}
}

func TestClusterCoordinatesDeterministic(t *testing.T) {
	points := neighborhoods(15)

	first, err := ClusterCoordinates(points, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for run := 0; run < 5; run++ {
		again, err := ClusterCoordinates(points, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different partition", run)
		}
	}
}

func TestClusterCoordinatesSortedByCentroid(t *testing.T) {
	clusters, err := ClusterCoordinates(neighborhoods(10), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(clusters); i++ {
		prev, cur := clusters[i-1].Centroid, clusters[i].Centroid
		if prev.Lon > cur.Lon || (prev.Lon == cur.Lon && prev.Lat > cur.Lat) {
			t.Fatalf("clusters not sorted by centroid at %d", i)
		}
	}
}

func TestClusterCoordinatesKBounds(t *testing.T) {
	points := neighborhoods(2)

	if _, err := ClusterCoordinates(points, 0); err == nil {
		t.Fatalf("expected error for k=0")
	}
	if _, err := ClusterCoordinates(points, len(points)+1); err == nil {
		t.Fatalf("expected error for k > n")
	}

	clusters, err := ClusterCoordinates(points, len(points))
	if err != nil {
		t.Fatalf("unexpected error for k=n: %v", err)
	}
	for i, c := range clusters {
		if len(c.Members) != 1 {
			t.Fatalf("cluster %d: expected singleton, got %d members", i, len(c.Members))
		}
	}
}

func TestClusterCoordinatesSinglePoint(t *testing.T) {
	clusters, err := ClusterCoordinates([]domain.Coordinates{{Lon: 76.3, Lat: 10.0}}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 1 || len(clusters[0].Members) != 1 {
		t.Fatalf("expected a single singleton cluster, got %+v", clusters)
	}
}

// One dense block holding more students than a bus plus a single outlier:
// geometry alone would keep the whole block together.
func skewedLayout() []domain.Coordinates {
	points := make([]domain.Coordinates, 0, 42)
	for i := 0; i < 41; i++ {
		points = append(points, domain.Coordinates{
			Lon: 76.30 + float64(i%7)*0.0005,
			Lat: 10.00 + float64(i/7)*0.0005,
		})
	}
	points = append(points, domain.Coordinates{Lon: 76.50, Lat: 10.30})
	return points
}

func TestBoundClusterSizesSplitsDenseBlock(t *testing.T) {
	points := skewedLayout()

	clusters, err := ClusterCoordinates(points, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bounded, err := BoundClusterSizes(points, clusters, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[int]bool, len(points))
	for i, c := range bounded {
		if len(c.Members) > 40 {
			t.Fatalf("cluster %d holds %d members, capacity 40", i, len(c.Members))
		}
		if len(c.Members) == 0 {
			t.Fatalf("cluster %d emptied by rebalancing", i)
		}
		for _, idx := range c.Members {
			if seen[idx] {
				t.Fatalf("point %d assigned twice", idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != len(points) {
		t.Fatalf("expected %d assigned points, got %d", len(points), len(seen))
	}
}

func TestBoundClusterSizesDeterministic(t *testing.T) {
	points := skewedLayout()

	run := func() []Cluster {
		clusters, err := ClusterCoordinates(points, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		bounded, err := BoundClusterSizes(points, clusters, 40)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return bounded
	}

	first := run()
	for i := 0; i < 5; i++ {
		if !reflect.DeepEqual(first, run()) {
			t.Fatalf("run %d produced a different bounded partition", i)
		}
	}
}

func TestBoundClusterSizesBalancedPartitionUntouched(t *testing.T) {
	points := neighborhoods(10)

	clusters, err := ClusterCoordinates(points, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bounded, err := BoundClusterSizes(points, clusters, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unbounded, err := ClusterCoordinates(points, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(unbounded, bounded) {
		t.Fatalf("partition already within capacity must not change")
	}
}

func TestBoundClusterSizesInsufficientRoom(t *testing.T) {
	points := skewedLayout()

	clusters, err := ClusterCoordinates(points, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := BoundClusterSizes(points, clusters, 40); err == nil {
		t.Fatalf("expected error when clusters cannot hold all points")
	}
	if _, err := BoundClusterSizes(points, clusters, 0); err == nil {
		t.Fatalf("expected error for non-positive capacity")
	}
}

func TestClusterCoordinatesCoincidentPoints(t *testing.T) {
	points := make([]domain.Coordinates, 6)
	for i := range points {
		points[i] = domain.Coordinates{Lon: 76.3, Lat: 10.0}
	}

	clusters, err := ClusterCoordinates(points, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := 0
	for _, c := range clusters {
		total += len(c.Members)
	}
	if total != len(points) {
		t.Fatalf("expected all %d points assigned, got %d", len(points), total)
	}
}
