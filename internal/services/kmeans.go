package services

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/aswinpradeepc/edurider-v2/internal/domain"
)

// Clustering runs with a fixed seed and a fixed number of re-initializations
// so the resulting partition is reproducible for a given input set and k.
// Cluster labels are not stable identifiers; clusters are returned sorted by
// centroid and only the membership partition is meaningful.
const (
	kmeansSeed     = 42
	kmeansInits    = 10
	kmeansMaxIters = 100
)

// Cluster is one geographically compact group produced by k-means.
// Members are indices into the input point slice.
type Cluster struct {
	Centroid domain.Coordinates
	Members  []int
}

// ClusterCoordinates partitions points into k groups by k-means on raw
// (longitude, latitude) pairs. Requires 1 <= k <= len(points).
func ClusterCoordinates(points []domain.Coordinates, k int) ([]Cluster, error) {
	n := len(points)
	if k < 1 {
		return nil, fmt.Errorf("cluster coordinates: k=%d must be at least 1", k)
	}
	if k > n {
		return nil, fmt.Errorf("cluster coordinates: k=%d exceeds point count %d", k, n)
	}

	rng := rand.New(rand.NewSource(kmeansSeed))

	bestInertia := math.Inf(1)
	var bestLabels []int
	var bestCentroids []domain.Coordinates

	for run := 0; run < kmeansInits; run++ {
		centroids := seedCentroids(points, k, rng)
		labels, inertia := lloyd(points, centroids)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
			bestCentroids = centroids
		}
	}

	clusters := make([]Cluster, k)
	for i := range clusters {
		clusters[i].Centroid = bestCentroids[i]
	}
	for i, label := range bestLabels {
		clusters[label].Members = append(clusters[label].Members, i)
	}

	// Sort by centroid so downstream behavior never depends on run-to-run
	// label assignment.
	sort.Slice(clusters, func(a, b int) bool {
		if clusters[a].Centroid.Lon != clusters[b].Centroid.Lon {
			return clusters[a].Centroid.Lon < clusters[b].Centroid.Lon
		}
		return clusters[a].Centroid.Lat < clusters[b].Centroid.Lat
	})

	return clusters, nil
}

// seedCentroids picks initial centroids with k-means++ weighting: the first
// uniformly, each subsequent one with probability proportional to squared
// distance from the nearest centroid chosen so far.
func seedCentroids(points []domain.Coordinates, k int, rng *rand.Rand) []domain.Coordinates {
	centroids := make([]domain.Coordinates, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	dists := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centroids {
				if sq := sqDist(p, c); sq < d {
					d = sq
				}
			}
			dists[i] = d
			total += d
		}

		if total == 0 {
			// All remaining points coincide with a centroid; pick uniformly.
			centroids = append(centroids, points[rng.Intn(len(points))])
			continue
		}

		target := rng.Float64() * total
		acc := 0.0
		chosen := len(points) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

// lloyd iterates assignment and centroid updates until the partition is
// stable, and returns the final labels with their total inertia.
func lloyd(points []domain.Coordinates, centroids []domain.Coordinates) ([]int, float64) {
	k := len(centroids)
	labels := make([]int, len(points))

	for iter := 0; iter < kmeansMaxIters; iter++ {
		changed := false
		for i, p := range points {
			best := 0
			bestD := sqDist(p, centroids[0])
			for c := 1; c < k; c++ {
				if d := sqDist(p, centroids[c]); d < bestD {
					bestD = d
					best = c
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		sumLon := make([]float64, k)
		sumLat := make([]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			sumLon[labels[i]] += p.Lon
			sumLat[labels[i]] += p.Lat
			counts[labels[i]]++
		}

		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed an emptied cluster with the point farthest from
				// its current centroid to keep all k groups populated.
				far, farD := 0, -1.0
				for i, p := range points {
					if d := sqDist(p, centroids[labels[i]]); d > farD {
						farD = d
						far = i
					}
				}
				centroids[c] = points[far]
				labels[far] = c
				changed = true
				continue
			}
			centroids[c] = domain.Coordinates{
				Lon: sumLon[c] / float64(counts[c]),
				Lat: sumLat[c] / float64(counts[c]),
			}
		}

		if !changed {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += sqDist(p, centroids[labels[i]])
	}

	return labels, inertia
}

// BoundClusterSizes enforces a per-cluster member cap on a partition.
// K-means splits by geometry alone, so a dense block can swallow more
// members than one trip may hold even when enough clusters exist. Members
// of an over-capacity cluster are moved, farthest-from-centroid first, into
// the nearest cluster with room until every cluster is within the cap. The
// pass is deterministic for a given partition.
func BoundClusterSizes(points []domain.Coordinates, clusters []Cluster, capacity int) ([]Cluster, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("bound cluster sizes: capacity %d must be at least 1", capacity)
	}
	if len(clusters)*capacity < len(points) {
		return nil, fmt.Errorf("bound cluster sizes: %d clusters of %d cannot hold %d points",
			len(clusters), capacity, len(points))
	}

	moved := false
	for {
		over := -1
		for i := range clusters {
			if len(clusters[i].Members) > capacity {
				over = i
				break
			}
		}
		if over == -1 {
			break
		}

		src := &clusters[over]
		far, farD, farPos := -1, -1.0, -1
		for pos, idx := range src.Members {
			if d := sqDist(points[idx], src.Centroid); d > farD {
				far, farD, farPos = idx, d, pos
			}
		}

		dest, destD := -1, math.Inf(1)
		for j := range clusters {
			if j == over || len(clusters[j].Members) >= capacity {
				continue
			}
			if d := sqDist(points[far], clusters[j].Centroid); d < destD {
				dest, destD = j, d
			}
		}
		if dest == -1 {
			return nil, fmt.Errorf("bound cluster sizes: no cluster has room for point %d", far)
		}

		src.Members = append(src.Members[:farPos], src.Members[farPos+1:]...)
		clusters[dest].Members = append(clusters[dest].Members, far)
		moved = true
	}

	if !moved {
		return clusters, nil
	}

	for i := range clusters {
		sort.Ints(clusters[i].Members)
		var lon, lat float64
		for _, idx := range clusters[i].Members {
			lon += points[idx].Lon
			lat += points[idx].Lat
		}
		n := float64(len(clusters[i].Members))
		clusters[i].Centroid = domain.Coordinates{Lon: lon / n, Lat: lat / n}
	}

	sort.Slice(clusters, func(a, b int) bool {
		if clusters[a].Centroid.Lon != clusters[b].Centroid.Lon {
			return clusters[a].Centroid.Lon < clusters[b].Centroid.Lon
		}
		return clusters[a].Centroid.Lat < clusters[b].Centroid.Lat
	})

	return clusters, nil
}

func sqDist(a, b domain.Coordinates) float64 {
	dLon := a.Lon - b.Lon
	dLat := a.Lat - b.Lat
	return dLon*dLon + dLat*dLat
}
