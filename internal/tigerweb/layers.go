package tigerweb

// Layer ids within the TIGERweb/tigerWMS_Current map service.
const (
	LayerBlockGroups        = 10
	LayerCountySubdivisions = 22
	LayerPlaces             = 28
)

// LayerNames maps known layer ids to display names.
var LayerNames = map[int]string{
	LayerBlockGroups:        "Census Block Groups",
	LayerCountySubdivisions: "County Subdivisions",
	LayerPlaces:             "Incorporated Places",
}

// boundaryFields is the output field list shared by the centroid layers.
const boundaryFields = "STATE,NAME,AREALAND,CENTLAT,CENTLON"

// DefaultLayerRequests returns the two boundary queries the pipeline runs:
// all incorporated places, and the county subdivisions whose names mark
// them as minor civil divisions.
func DefaultLayerRequests() []LayerRequest {
	return []LayerRequest{
		{
			LayerID:   LayerPlaces,
			Where:     "1=1",
			OutFields: boundaryFields,
		},
		{
			LayerID: LayerCountySubdivisions,
			Where: "NAME LIKE '%township' OR " +
				"NAME LIKE '%town' OR " +
				"NAME LIKE '%village' OR " +
				"NAME LIKE '%borough'",
			OutFields: boundaryFields,
		},
	}
}
