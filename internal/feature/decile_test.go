package feature

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableWithAreas(state string, areas ...int64) Table {
	t := make(Table, len(areas))
	for i, a := range areas {
		t[i] = Row{State: state, AreaLand: a}
	}
	return t
}

func TestAssignDecilesBounds(t *testing.T) {
	areas := make([]int64, 40)
	for i := range areas {
		areas[i] = int64((i + 1) * 1000)
	}
	tbl := tableWithAreas("08", areas...)
	tbl.AssignDeciles(DecileBuckets)

	minD, maxD := tbl[0].Decile, tbl[0].Decile
	for _, r := range tbl {
		assert.GreaterOrEqual(t, r.Decile, 1)
		assert.LessOrEqual(t, r.Decile, DecileBuckets)
		minD = min(minD, r.Decile)
		maxD = max(maxD, r.Decile)
	}
	assert.Equal(t, 1, minD)
	assert.Equal(t, DecileBuckets, maxD)
}

func TestAssignDecilesMonotonic(t *testing.T) {
	tbl := tableWithAreas("08", 7, 300, 15, 9000, 42, 42, 8, 120000, 64, 2, 550, 31)
	tbl.AssignDeciles(DecileBuckets)

	sorted := append(Table(nil), tbl...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AreaLand < sorted[j].AreaLand })

	for i := 1; i < len(sorted); i++ {
		assert.GreaterOrEqual(t, sorted[i].Decile, sorted[i-1].Decile,
			"decile must be non-decreasing in area")
	}
}

func TestAssignDecilesEqualAreasGetEqualDeciles(t *testing.T) {
	tbl := tableWithAreas("08", 5, 100, 5, 200, 5)
	tbl.AssignDeciles(DecileBuckets)

	assert.Equal(t, tbl[0].Decile, tbl[2].Decile)
	assert.Equal(t, tbl[0].Decile, tbl[4].Decile)
}

func TestAssignDecilesDuplicatesCollapse(t *testing.T) {
	// A constant column has a single quantile edge, so every row lands in
	// the one surviving bucket.
	tbl := tableWithAreas("08", 500, 500, 500, 500)
	tbl.AssignDeciles(DecileBuckets)

	for _, r := range tbl {
		assert.Equal(t, 1, r.Decile)
	}
}

func TestAssignDecilesSingleRow(t *testing.T) {
	tbl := tableWithAreas("08", 12345)
	tbl.AssignDeciles(DecileBuckets)
	assert.Equal(t, 1, tbl[0].Decile)
}

func TestAssignDecilesPerState(t *testing.T) {
	co := tableWithAreas("08", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
		11, 12, 13, 14, 15, 16, 17, 18, 19, 20)
	wy := tableWithAreas("56", 1000000)
	tbl := Concat(co, wy)
	tbl.AssignDeciles(DecileBuckets)

	// Wyoming's single feature ranks within its own state only.
	require.Equal(t, 1, tbl[len(tbl)-1].Decile)

	// Colorado's largest feature still tops its own ranking.
	var coMax int
	for _, r := range tbl {
		if r.State == "08" {
			coMax = max(coMax, r.Decile)
		}
	}
	assert.Equal(t, DecileBuckets, coMax)
}

func TestQuantileEdgesDeduplicated(t *testing.T) {
	edges := quantileEdges([]float64{5, 5, 5, 5}, DecileBuckets)
	assert.Len(t, edges, 1)

	edges = quantileEdges([]float64{1, 2}, DecileBuckets)
	for i := 1; i < len(edges); i++ {
		assert.Greater(t, edges[i], edges[i-1])
	}
}
