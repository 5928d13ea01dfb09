package vt

// GeomType tags the variant held by a Geometry value.
type GeomType uint8

const (
	GeomEmpty GeomType = iota
	GeomPoint
	GeomMultiPoint
	GeomLineString
	GeomMultiLineString
	GeomPolygon
	GeomMultiPolygon
	GeomCollection
)

func (t GeomType) String() string {
	switch t {
	case GeomPoint:
		return "Point"
	case GeomMultiPoint:
		return "MultiPoint"
	case GeomLineString:
		return "LineString"
	case GeomMultiLineString:
		return "MultiLineString"
	case GeomPolygon:
		return "Polygon"
	case GeomMultiPolygon:
		return "MultiPolygon"
	case GeomCollection:
		return "GeometryCollection"
	default:
		return "Empty"
	}
}

// Point is a projected vertex. X, Y live in [0, 1] unit-square
// Mercator space during projection/clipping, and become tile-local int16
// MPoint values once materialized (see transformPoint). Z is the vertex's simplification
// importance: squared perpendicular distance to the chord it would
// collapse into, or 1 for an endpoint/intersection vertex, or 0 for an
// unclassified interior vertex.
type Point struct {
	X, Y, Z float64
}

// Ring is a linear ring plus its absolute signed area (already halved).
// The first point need not equal the last at the projected stage; the
// clipper re-closes rings when it produces them.
type Ring struct {
	Points []Point
	Area   float64
}

// Line is a polyline plus its Manhattan length and, when line-metrics mode
// is enabled, the distances along the original unclipped line at which
// this slice starts and ends.
type Line struct {
	Points           []Point
	Dist             float64
	SegStart, SegEnd float64
}

// Geometry is a tagged union over the projected geometry variants GeoJSON
// supports. Only the field matching Type is meaningful.
type Geometry struct {
	Type         GeomType
	Point        Point
	MultiPoint   []Point
	Line         Line
	MultiLine    []Line
	Polygon      []Ring // first ring is the outer ring, rest are holes
	MultiPolygon [][]Ring
	Collection   []Geometry
}

// BBox is an axis-aligned bounding box in unit-square coordinates. A
// Tile's BBox is the union of its source features' bboxes and stays in
// unit-square space after materialization.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Union extends b to also cover o, returning the result.
func (b BBox) Union(o BBox) BBox {
	if o.MinX < b.MinX {
		b.MinX = o.MinX
	}
	if o.MinY < b.MinY {
		b.MinY = o.MinY
	}
	if o.MaxX > b.MaxX {
		b.MaxX = o.MaxX
	}
	if o.MaxY > b.MaxY {
		b.MaxY = o.MaxY
	}
	return b
}

// Properties is a feature's shared, immutable property map. Go maps are
// already reference types, so aliasing one across many clipped copies of a
// feature (rather than cloning it) falls out of simply not copying the map.
type Properties map[string]interface{}

// Feature is a projected feature: geometry in unit-square space, a shared
// property map, an identifier, a cached bbox and point count.
//
// ID is one of: nil, uint64, int64, float64, string.
type Feature struct {
	Geometry   Geometry
	Properties Properties
	ID         interface{}
	BBox       BBox
	NumPoints  int
}

func emptyBBox() BBox {
	return BBox{MinX: 2, MinY: 1, MaxX: -1, MaxY: 0}
}

// RawPoint is a raw geographic coordinate pair (longitude, latitude), in
// degrees, as delivered by an external GeoJSON parser.
type RawPoint struct {
	Lon, Lat float64
}

// RawGeometry is the input-side counterpart of Geometry: a tagged union of
// geometry variants with raw lon/lat coordinates, exactly as an
// already-parsed GeoJSON value would present them. The core never parses
// GeoJSON text itself; callers (internal/geoadapt) build these from
// whatever in-memory GeoJSON representation they use.
type RawGeometry struct {
	Type         GeomType
	Point        RawPoint
	MultiPoint   []RawPoint
	Line         []RawPoint
	MultiLine    [][]RawPoint
	Polygon      [][]RawPoint
	MultiPolygon [][][]RawPoint
	Collection   []RawGeometry
}

// RawFeature is the input-side counterpart of Feature.
type RawFeature struct {
	Geometry   RawGeometry
	Properties Properties
	ID         interface{} // nil if absent; caller sets only if GenerateID is off
}
