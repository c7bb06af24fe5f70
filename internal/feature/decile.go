package feature

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DecileBuckets is the number of quantile buckets used for area ranking.
const DecileBuckets = 20

// AssignDeciles computes, independently per state group, a 1-indexed
// quantile rank over land area and stores it on each row. Quantile edges
// are linearly interpolated; duplicate edges are dropped, so low-variance
// groups collapse into fewer effective buckets. Within a group the rank is
// monotone non-decreasing in area, and every rank lies in [1, buckets].
func (t Table) AssignDeciles(buckets int) {
	byState := make(map[string][]int)
	for i, r := range t {
		byState[r.State] = append(byState[r.State], i)
	}

	for _, idxs := range byState {
		areas := make([]float64, len(idxs))
		for j, i := range idxs {
			areas[j] = float64(t[i].AreaLand)
		}
		edges := quantileEdges(areas, buckets)
		for _, i := range idxs {
			t[i].Decile = bucketOf(float64(t[i].AreaLand), edges)
		}
	}
}

// quantileEdges returns the deduplicated bucket edges for the values,
// including both endpoints.
func quantileEdges(values []float64, buckets int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	edges := make([]float64, 0, buckets+1)
	for i := 0; i <= buckets; i++ {
		p := float64(i) / float64(buckets)
		e := stat.Quantile(p, stat.LinInterp, sorted, nil)
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	return edges
}

// bucketOf returns the 1-indexed bucket containing v. Buckets are
// right-inclusive intervals between consecutive edges; the lowest value
// falls in bucket 1.
func bucketOf(v float64, edges []float64) int {
	if len(edges) < 2 {
		return 1
	}
	for j := 1; j < len(edges); j++ {
		if v <= edges[j] {
			return j
		}
	}
	return len(edges) - 1
}
