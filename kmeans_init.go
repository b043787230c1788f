package clusterkit

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// kmeansPlusPlus picks k initial centers with greedy k-means++: each new
// center is the best of 2+ln(k) candidates sampled proportionally to their
// squared distance from the nearest existing center. Returns flat row-major
// centers (k * dims).
func kmeansPlusPlus(flat []float64, n, dims, k int, rng *rand.Rand) []float64 {
	centers := make([]float64, k*dims)
	trials := 2 + int(math.Log(float64(k)))

	first := rng.Intn(n)
	copy(row(centers, 0, dims), row(flat, first, dims))

	closest := make([]float64, n)
	for i := 0; i < n; i++ {
		closest[i] = sqEuclidean(row(flat, i, dims), row(centers, 0, dims))
	}
	pot := floats.Sum(closest)

	cum := make([]float64, n)
	candDist := make([]float64, n)
	bestDist := make([]float64, n)

	for c := 1; c < k; c++ {
		floats.CumSum(cum, closest)

		bestCand, bestPot := -1, math.Inf(1)
		for t := 0; t < trials; t++ {
			cand := sort.SearchFloat64s(cum, rng.Float64()*pot)
			cand = min(cand, n-1)

			cp := row(flat, cand, dims)
			for i := 0; i < n; i++ {
				candDist[i] = math.Min(closest[i], sqEuclidean(row(flat, i, dims), cp))
			}
			if p := floats.Sum(candDist); p < bestPot {
				bestCand, bestPot = cand, p
				copy(bestDist, candDist)
			}
		}

		copy(row(centers, c, dims), row(flat, bestCand, dims))
		copy(closest, bestDist)
		pot = bestPot
	}

	return centers
}
