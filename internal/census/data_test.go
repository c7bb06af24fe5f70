package census

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/censusmap/internal/feature"
	"github.com/sells-group/censusmap/internal/tigerweb"
)

func testPolygon(minLon, minLat, maxLon, maxLat float64) *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}})
}

func geoFeature(geoid string, g geom.T) tigerweb.GeoFeature {
	return tigerweb.GeoFeature{
		Properties: feature.Properties{"GEOID": geoid},
		Geometry:   g,
	}
}

func TestJoinGeometryInner(t *testing.T) {
	attrs := []AttributeRow{
		{GEOID: "a", Name: "alpha", Values: map[string]string{"B19013_001E": "85000"}},
		{GEOID: "b", Name: "beta", Values: map[string]string{"B19013_001E": "42000"}},
	}
	geoms := []tigerweb.GeoFeature{
		geoFeature("a", testPolygon(-105, 40, -104, 41)),
	}

	tbl := JoinGeometry(attrs, geoms, "B19013_001E", JoinInner, true)
	require.Len(t, tbl, 1)
	assert.Equal(t, "a", tbl[0].GEOID)
	require.NotNil(t, tbl[0].Income)
	assert.InDelta(t, 85000, *tbl[0].Income, 1e-9)
	assert.NotNil(t, tbl[0].Geometry)
}

func TestJoinGeometryOuter(t *testing.T) {
	attrs := []AttributeRow{
		{GEOID: "a", Values: map[string]string{"B19013_001E": "85000"}},
		{GEOID: "b", Values: map[string]string{"B19013_001E": "42000"}},
	}
	geoms := []tigerweb.GeoFeature{
		geoFeature("a", testPolygon(-105, 40, -104, 41)),
		geoFeature("c", testPolygon(-106, 39, -105, 40)),
	}

	tbl := JoinGeometry(attrs, geoms, "B19013_001E", JoinOuter, true)
	require.Len(t, tbl, 3)

	byID := make(map[string]IncomeRow)
	for _, r := range tbl {
		byID[r.GEOID] = r
	}

	assert.NotNil(t, byID["a"].Geometry)
	assert.Nil(t, byID["b"].Geometry) // attribute-only row keeps its income
	require.NotNil(t, byID["b"].Income)
	assert.Nil(t, byID["c"].Income) // geometry-only row has no income
	assert.NotNil(t, byID["c"].Geometry)
}

func TestJoinGeometryNoDestring(t *testing.T) {
	attrs := []AttributeRow{{GEOID: "a", Values: map[string]string{"B19013_001E": "85000"}}}
	geoms := []tigerweb.GeoFeature{geoFeature("a", testPolygon(-105, 40, -104, 41))}

	tbl := JoinGeometry(attrs, geoms, "B19013_001E", JoinInner, false)
	require.Len(t, tbl, 1)
	assert.Nil(t, tbl[0].Income)
	assert.Equal(t, "85000", tbl[0].RawValue)
}

func TestCleanSentinel(t *testing.T) {
	sentinel := float64(Sentinel)
	nearMiss := float64(Sentinel + 1)
	normal := 85000.0

	tbl := IncomeTable{
		{GEOID: "a", Income: &sentinel},
		{GEOID: "b", Income: &normal},
		{GEOID: "c", Income: nil},
		{GEOID: "d", Income: &nearMiss},
	}
	tbl.CleanSentinel()

	assert.Nil(t, tbl[0].Income)
	require.NotNil(t, tbl[1].Income)
	assert.InDelta(t, 85000.0, *tbl[1].Income, 1e-9)
	assert.Nil(t, tbl[2].Income)
	require.NotNil(t, tbl[3].Income)
	assert.InDelta(t, nearMiss, *tbl[3].Income, 1e-9)
}

func TestIncomeTableBounds(t *testing.T) {
	tbl := IncomeTable{
		{GEOID: "a", Geometry: testPolygon(-105, 40, -104, 41)},
		{GEOID: "b", Geometry: testPolygon(-106, 39, -105, 40)},
		{GEOID: "c"}, // no geometry
	}

	bbox, ok := tbl.Bounds()
	require.True(t, ok)
	assert.InDelta(t, -106, bbox.MinLon, 1e-9)
	assert.InDelta(t, 39, bbox.MinLat, 1e-9)
	assert.InDelta(t, -104, bbox.MaxLon, 1e-9)
	assert.InDelta(t, 41, bbox.MaxLat, 1e-9)

	_, ok = IncomeTable{{GEOID: "x"}}.Bounds()
	assert.False(t, ok)
}
