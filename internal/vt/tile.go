package vt

import "math"

// MPoint is a materialized vertex: tile-local signed 16-bit integer
// coordinates, range [-buffer, extent+buffer] on both axes.
type MPoint struct {
	X, Y int16
}

// MLine is a materialized polyline.
type MLine struct {
	Points []MPoint
}

// MRing is a materialized linear ring (explicitly closed).
type MRing struct {
	Points []MPoint
}

// MGeometry is the materialized counterpart of Geometry: same variant set,
// int16 tile-local coordinates.
type MGeometry struct {
	Type         GeomType
	Point        MPoint
	MultiPoint   []MPoint
	Line         MLine
	MultiLine    []MLine
	Polygon      []MRing
	MultiPolygon [][]MRing
	Collection   []MGeometry
}

// MFeature is a materialized feature: tile-local geometry, shared
// properties (possibly with mapbox_clip_start/end added in a private
// copy), id.
type MFeature struct {
	Geometry   MGeometry
	Properties Properties
	ID         interface{}
}

// Tile is the internal tile data model: retained source features to drill
// down from, the materialized feature set, and bookkeeping (bbox, point
// counters, id index) supporting O(id) removal.
type Tile struct {
	Z           uint8
	X, Y        uint32
	Z2          uint64
	Extent      int
	Tolerance   float64
	SqTolerance float64
	LineMetrics bool

	Source   []*Feature // retained projected source; nil once split or cleared
	Features []*MFeature

	BBox           BBox
	NumPoints      int
	NumSimplified  int

	idIndex map[interface{}][]int
}

// materialize builds a Tile's materialized feature set from a projected
// feature list. It does not decide whether to retain the source feature
// list afterward — the caller (split, in index.go) makes that call and
// sets Tile.Source itself.
func materialize(z uint8, x, y uint32, z2 uint64, extent int, tolerance float64, lineMetrics bool, features []*Feature) *Tile {
	t := &Tile{
		Z:           z,
		X:           x,
		Y:           y,
		Z2:          z2,
		Extent:      extent,
		Tolerance:   tolerance,
		SqTolerance: tolerance * tolerance,
		LineMetrics: lineMetrics,
		BBox:        emptyBBox(),
		idIndex:     make(map[interface{}][]int),
	}

	for _, f := range features {
		t.NumPoints += f.NumPoints

		mg, ok := transformGeometry(f.Geometry, z2, x, y, extent, t.Tolerance, t.SqTolerance, &t.NumSimplified)
		if !ok {
			continue
		}

		props := f.Properties
		if lineMetrics && f.Geometry.Type == GeomLineString && f.Geometry.Line.Dist > 0 {
			props = withClipMetrics(props, f.Geometry.Line)
		}

		mf := &MFeature{Geometry: mg, Properties: props, ID: f.ID}
		t.Features = append(t.Features, mf)
		if f.ID != nil {
			idx := len(t.Features) - 1
			t.idIndex[f.ID] = append(t.idIndex[f.ID], idx)
		}

		t.BBox = t.BBox.Union(f.BBox)
	}

	return t
}

func withClipMetrics(props Properties, line Line) Properties {
	out := make(Properties, len(props)+2)
	for k, v := range props {
		out[k] = v
	}
	out["mapbox_clip_start"] = line.SegStart / line.Dist
	out["mapbox_clip_end"] = line.SegEnd / line.Dist
	return out
}

func transformPoint(p Point, z2 uint64, x, y uint32, extent int) MPoint {
	tx := (p.X*float64(z2) - float64(x)) * float64(extent)
	ty := (p.Y*float64(z2) - float64(y)) * float64(extent)
	return MPoint{X: int16(math.Round(tx)), Y: int16(math.Round(ty))}
}

func transformGeometry(g Geometry, z2 uint64, x, y uint32, extent int, tolerance, sqTolerance float64, numSimplified *int) (MGeometry, bool) {
	switch g.Type {
	case GeomPoint:
		p := transformPoint(g.Point, z2, x, y, extent)
		*numSimplified++
		return MGeometry{Type: GeomPoint, Point: p}, true

	case GeomMultiPoint:
		if len(g.MultiPoint) == 0 {
			return MGeometry{}, false
		}
		pts := make([]MPoint, len(g.MultiPoint))
		for i, gp := range g.MultiPoint {
			pts[i] = transformPoint(gp, z2, x, y, extent)
			*numSimplified++
		}
		return MGeometry{Type: GeomMultiPoint, MultiPoint: pts}, true

	case GeomLineString:
		l, ok := transformLine(g.Line, z2, x, y, extent, tolerance, sqTolerance, numSimplified)
		if !ok {
			return MGeometry{}, false
		}
		return MGeometry{Type: GeomLineString, Line: l}, true

	case GeomMultiLineString:
		var lines []MLine
		for _, gl := range g.MultiLine {
			if l, ok := transformLine(gl, z2, x, y, extent, tolerance, sqTolerance, numSimplified); ok {
				lines = append(lines, l)
			}
		}
		switch len(lines) {
		case 0:
			return MGeometry{}, false
		case 1:
			return MGeometry{Type: GeomLineString, Line: lines[0]}, true
		default:
			return MGeometry{Type: GeomMultiLineString, MultiLine: lines}, true
		}

	case GeomPolygon:
		rings, ok := transformRings(g.Polygon, z2, x, y, extent, sqTolerance, numSimplified)
		if !ok {
			return MGeometry{}, false
		}
		return MGeometry{Type: GeomPolygon, Polygon: rings}, true

	case GeomMultiPolygon:
		var polys [][]MRing
		for _, poly := range g.MultiPolygon {
			if rings, ok := transformRings(poly, z2, x, y, extent, sqTolerance, numSimplified); ok {
				polys = append(polys, rings)
			}
		}
		switch len(polys) {
		case 0:
			return MGeometry{}, false
		case 1:
			return MGeometry{Type: GeomPolygon, Polygon: polys[0]}, true
		default:
			return MGeometry{Type: GeomMultiPolygon, MultiPolygon: polys}, true
		}

	case GeomCollection:
		var geoms []MGeometry
		for _, sub := range g.Collection {
			if mg, ok := transformGeometry(sub, z2, x, y, extent, tolerance, sqTolerance, numSimplified); ok {
				geoms = append(geoms, mg)
			}
		}
		if len(geoms) == 0 {
			return MGeometry{}, false
		}
		return MGeometry{Type: GeomCollection, Collection: geoms}, true

	default:
		return MGeometry{}, false
	}
}

// transformLine drops the whole line if its total length does not exceed
// tolerance; otherwise it keeps only vertices important enough to survive
// this zoom (Z > sqTolerance — endpoints and clip intersections always
// qualify, since they carry Z=1).
func transformLine(line Line, z2 uint64, x, y uint32, extent int, tolerance, sqTolerance float64, numSimplified *int) (MLine, bool) {
	if line.Dist <= tolerance {
		return MLine{}, false
	}
	var pts []MPoint
	for _, p := range line.Points {
		if p.Z > sqTolerance {
			pts = append(pts, transformPoint(p, z2, x, y, extent))
			*numSimplified++
		}
	}
	if len(pts) < 2 {
		return MLine{}, false
	}
	return MLine{Points: pts}, true
}

func transformRings(rings []Ring, z2 uint64, x, y uint32, extent int, sqTolerance float64, numSimplified *int) ([]MRing, bool) {
	if len(rings) == 0 {
		return nil, false
	}
	outer, ok := transformRing(rings[0], z2, x, y, extent, sqTolerance, numSimplified)
	if !ok {
		return nil, false
	}
	out := []MRing{outer}
	for _, hole := range rings[1:] {
		if r, ok := transformRing(hole, z2, x, y, extent, sqTolerance, numSimplified); ok {
			out = append(out, r)
		}
	}
	return out, true
}

// transformRing drops the ring if its area does not exceed sqTolerance;
// otherwise keeps important vertices the same way transformLine does. A
// result with fewer than 4 points (3 distinct corners plus the closing
// point) cannot describe a polygon and is dropped.
func transformRing(ring Ring, z2 uint64, x, y uint32, extent int, sqTolerance float64, numSimplified *int) (MRing, bool) {
	if ring.Area <= sqTolerance {
		return MRing{}, false
	}
	var pts []MPoint
	for _, p := range ring.Points {
		if p.Z > sqTolerance {
			pts = append(pts, transformPoint(p, z2, x, y, extent))
			*numSimplified++
		}
	}
	if len(pts) < 4 {
		return MRing{}, false
	}
	return MRing{Points: pts}, true
}

// removeID deletes every materialized feature carrying id from the tile
// via swap-remove, keeping the id index consistent with the resulting
// positions.
func (t *Tile) removeID(id interface{}) {
	removeIDPositions(&t.Features, t.idIndex, id)
}

// removeIDPositions is the swap-remove id-index maintenance shared by
// Tile.removeID and the copy-on-write update path in update.go.
func removeIDPositions(features *[]*MFeature, idIndex map[interface{}][]int, id interface{}) {
	positions, ok := idIndex[id]
	if !ok {
		return
	}
	delete(idIndex, id)

	// Remove highest indices first so earlier indices in `positions`
	// remain valid during the walk.
	sortDesc(positions)
	for _, pos := range positions {
		last := len(*features) - 1
		if pos != last {
			moved := (*features)[last]
			(*features)[pos] = moved
			if moved.ID != nil {
				reindexAfterSwap(idIndex, moved.ID, last, pos)
			}
		}
		*features = (*features)[:last]
	}
}

func reindexAfterSwap(idx map[interface{}][]int, id interface{}, from, to int) {
	positions := idx[id]
	for i, p := range positions {
		if p == from {
			positions[i] = to
			return
		}
	}
}

func sortDesc(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] < s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
