package colour

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"
)

// Clustering constants. The seed and restart count are part of the
// extractor's contract: the same image and colour count must always
// produce the same palette, so the RNG is seeded with a fixed value and
// the best of a fixed number of restarts is kept.
const (
	clusterSeed     = 42
	clusterRestarts = 10
	maxIterations   = 50
	convergenceEps  = 1e-3
)

// KMeansExtractor implements colour extraction using k-means clustering
// over every pixel of the image in RGB space.
type KMeansExtractor struct {
	restarts      int
	maxIterations int
}

// NewKMeansExtractor creates a new KMeansExtractor with default settings.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{
		restarts:      clusterRestarts,
		maxIterations: maxIterations,
	}
}

// Extract extracts the count most frequent colours from an image.
// The returned palette is sorted by descending cluster pixel count;
// frequency ties keep cluster creation order.
func (e *KMeansExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("colour count must be at least 1, got %d", count)
	}
	if count > 256 {
		return nil, fmt.Errorf("colour count too large: %d (maximum: 256)", count)
	}

	points := imagePoints(img)
	if len(points) == 0 {
		return nil, fmt.Errorf("no pixels found in image")
	}

	centroids, counts := e.cluster(points, count)

	// Sort clusters most-frequent first. The stable sort keeps cluster
	// creation order for equal counts so repeated runs are reproducible.
	order := make([]int, len(centroids))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	colors := make([]RGB, len(order))
	sortedCounts := make([]int, len(order))
	for i, idx := range order {
		c := centroids[idx]
		// Truncate the fractional centroid to integer channels.
		colors[i] = RGB{
			R: uint8(clampChannel(c.R)),
			G: uint8(clampChannel(c.G)),
			B: uint8(clampChannel(c.B)),
		}
		sortedCounts[i] = counts[idx]
	}

	return NewPaletteWithCounts(colors, sortedCounts), nil
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

// distanceSq calculates the squared Euclidean distance between two points.
func (p point3D) distanceSq(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return dr*dr + dg*dg + db*db
}

func clampChannel(v float64) float64 {
	return math.Min(255, math.Max(0, v))
}

// imagePoints flattens the image into independent pixel colour samples in
// raster order, discarding spatial structure.
func imagePoints(img image.Image) []point3D {
	bounds := img.Bounds()
	points := make([]point3D, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgb := ToRGB(img.At(x, y))
			points = append(points, point3D{
				R: float64(rgb.R),
				G: float64(rgb.G),
				B: float64(rgb.B),
			})
		}
	}
	return points
}

// cluster runs the configured number of seeded k-means restarts and keeps
// the run with the lowest within-cluster sum of squares. Returns the best
// run's centroids and the pixel count assigned to each.
func (e *KMeansExtractor) cluster(points []point3D, k int) ([]point3D, []int) {
	rng := rand.New(rand.NewSource(clusterSeed))

	var bestCentroids []point3D
	var bestAssignments []int
	bestInertia := math.Inf(1)

	for restart := 0; restart < e.restarts; restart++ {
		centroids, assignments, inertia := e.run(points, k, rng)
		// Strict comparison: ties keep the earlier restart.
		if inertia < bestInertia {
			bestInertia = inertia
			bestCentroids = centroids
			bestAssignments = assignments
		}
	}

	counts := make([]int, k)
	for _, a := range bestAssignments {
		counts[a]++
	}
	return bestCentroids, counts
}

// run performs a single k-means pass: k-means++ initialization followed by
// Lloyd iterations until convergence or the iteration cap.
func (e *KMeansExtractor) run(points []point3D, k int, rng *rand.Rand) ([]point3D, []int, float64) {
	centroids := initCentroids(points, k, rng)
	assignments := make([]int, len(points))

	for iter := 0; iter < e.maxIterations; iter++ {
		for i, p := range points {
			assignments[i] = nearestCentroid(p, centroids)
		}

		newCentroids := recalculateCentroids(points, assignments, k, rng)

		totalMovement := 0.0
		for i := range centroids {
			totalMovement += math.Sqrt(centroids[i].distanceSq(newCentroids[i]))
		}
		centroids = newCentroids

		if totalMovement/float64(k) < convergenceEps {
			break
		}
	}

	// Final assignment against the converged centroids.
	inertia := 0.0
	for i, p := range points {
		assignments[i] = nearestCentroid(p, centroids)
		inertia += p.distanceSq(centroids[assignments[i]])
	}

	return centroids, assignments, inertia
}

// initCentroids initializes centroids using the k-means++ scheme: the
// first centroid is drawn uniformly, the rest with probability
// proportional to squared distance from the nearest chosen centroid.
func initCentroids(points []point3D, k int, rng *rand.Rand) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		totalDistance := 0.0
		for i, p := range points {
			minDist := math.Inf(1)
			for _, c := range centroids {
				if d := p.distanceSq(c); d < minDist {
					minDist = d
				}
			}
			distances[i] = minDist
			totalDistance += minDist
		}

		if totalDistance == 0 {
			// Fewer distinct colours than clusters. Duplicate the last
			// centroid with a tiny perturbation; the degenerate clusters
			// are accepted behaviour, not an error.
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{
				R: last.R + 0.1,
				G: last.G + 0.1,
				B: last.B + 0.1,
			})
			continue
		}

		target := rng.Float64() * totalDistance
		cumulative := 0.0
		chosen := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

// nearestCentroid finds the index of the nearest centroid to a point.
func nearestCentroid(p point3D, centroids []point3D) int {
	minDist := math.Inf(1)
	nearest := 0
	for i, c := range centroids {
		if d := p.distanceSq(c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids recalculates centroid positions as the mean of
// their assigned points. Empty clusters are reseeded from the data.
func recalculateCentroids(points []point3D, assignments []int, k int, rng *rand.Rand) []point3D {
	sums := make([]point3D, k)
	counts := make([]int, k)

	for i, p := range points {
		c := assignments[i]
		sums[c].R += p.R
		sums[c].G += p.G
		sums[c].B += p.B
		counts[c]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] > 0 {
			centroids[i] = point3D{
				R: sums[i].R / float64(counts[i]),
				G: sums[i].G / float64(counts[i]),
				B: sums[i].B / float64(counts[i]),
			}
		} else {
			centroids[i] = points[rng.Intn(len(points))]
		}
	}
	return centroids
}
