package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	raw := Raw{
		{
			ColState:    "08",
			ColName:     "Berthoud town",
			ColAreaLand: float64(16616726),
			ColCentLat:  "+40.3081372",
			ColCentLon:  "-105.0630977",
		},
	}

	tbl, err := Coerce(raw)
	require.NoError(t, err)
	require.Len(t, tbl, 1)

	assert.Equal(t, "08", tbl[0].State)
	assert.Equal(t, "Berthoud town", tbl[0].Name)
	assert.Equal(t, int64(16616726), tbl[0].AreaLand)
	assert.InDelta(t, 40.3081372, tbl[0].CentLat, 1e-9)
	assert.InDelta(t, -105.0630977, tbl[0].CentLon, 1e-9)
	assert.Equal(t, 0, tbl[0].Decile)
}

func TestCoerceStringArea(t *testing.T) {
	tbl, err := Coerce(Raw{{
		ColState:    "08",
		ColName:     "x",
		ColAreaLand: "123456",
		ColCentLat:  float64(40.0),
		ColCentLon:  float64(-105.0),
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(123456), tbl[0].AreaLand)
}

func TestCoerceErrors(t *testing.T) {
	tests := []struct {
		name string
		row  Properties
	}{
		{
			name: "non-numeric area",
			row:  Properties{ColState: "08", ColName: "x", ColAreaLand: "abc", ColCentLat: 40.0, ColCentLon: -105.0},
		},
		{
			name: "non-numeric centroid",
			row:  Properties{ColState: "08", ColName: "x", ColAreaLand: 1.0, ColCentLat: "north", ColCentLon: -105.0},
		},
		{
			name: "missing area",
			row:  Properties{ColState: "08", ColName: "x", ColCentLat: 40.0, ColCentLon: -105.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(Raw{tt.row})
			assert.Error(t, err)
		})
	}
}

func TestConcatRaw(t *testing.T) {
	a := Raw{{ColName: "a1"}, {ColName: "a2"}}
	b := Raw{{ColName: "b1"}, {ColName: "b2"}, {ColName: "b3"}}

	out := ConcatRaw(a, b)
	require.Len(t, out, len(a)+len(b))
	assert.Equal(t, "a1", out[0][ColName])
	assert.Equal(t, "b3", out[4][ColName])
}

func TestConcat(t *testing.T) {
	a := Table{{Name: "a1"}}
	b := Table{{Name: "b1"}, {Name: "b2"}}

	out := Concat(a, b)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"a1", "b1", "b2"}, []string{out[0].Name, out[1].Name, out[2].Name})
}

func TestBBox(t *testing.T) {
	b := BBox{MinLon: -106, MinLat: 39, MaxLon: -104, MaxLat: 41}

	assert.True(t, b.Contains(-105, 40))
	assert.True(t, b.Contains(-106, 39)) // bounds inclusive
	assert.False(t, b.Contains(-103, 40))
	assert.False(t, b.Contains(-105, 42))

	p := b.Pad(0.05)
	assert.InDelta(t, -106.1, p.MinLon, 1e-9)
	assert.InDelta(t, -103.9, p.MaxLon, 1e-9)
	assert.InDelta(t, 38.9, p.MinLat, 1e-9)
	assert.InDelta(t, 41.1, p.MaxLat, 1e-9)
}

func TestFilterVisible(t *testing.T) {
	bbox := BBox{MinLon: -106, MinLat: 39, MaxLon: -104, MaxLat: 41}

	tbl := Table{
		{Name: "in-high", CentLon: -105, CentLat: 40, Decile: 20},
		{Name: "in-low", CentLon: -105, CentLat: 40, Decile: 18},
		{Name: "out-high", CentLon: -100, CentLat: 40, Decile: 20},
		{Name: "in-edge", CentLon: -105, CentLat: 40.5, Decile: 19},
	}

	got := tbl.FilterVisible(bbox, 19)
	require.Len(t, got, 2)
	assert.Equal(t, "in-high", got[0].Name)
	assert.Equal(t, "in-edge", got[1].Name)
}
