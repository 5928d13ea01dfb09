package vt

import "math"

// Clip cuts features against the axis-aligned accept strip [k1, k2) on the
// given axis (0 = x, 1 = y). minAll/maxAll are the extent of the whole
// input feature set along that axis, used for the trivial accept/reject
// gate; axis is 0 or 1.
//
// Clip never mutates its input: features outside the strip are dropped,
// features wholly inside are returned as-is (shared, not copied), and
// features straddling the boundary are rebuilt with a fresh geometry that
// still aliases the original shared property map.
func Clip(features []*Feature, k1, k2 float64, axis int, minAll, maxAll float64, lineMetrics bool) []*Feature {
	if minAll >= k1 && maxAll < k2 {
		return features
	}
	if maxAll < k1 || minAll >= k2 {
		return nil
	}

	var out []*Feature
	for _, f := range features {
		fMin, fMax := axisBBox(f.BBox, axis)
		if fMin >= k1 && fMax < k2 {
			out = append(out, f)
			continue
		}
		if fMax < k1 || fMin >= k2 {
			continue
		}
		out = append(out, clipFeature(f, k1, k2, axis, lineMetrics)...)
	}
	return out
}

func axisBBox(b BBox, axis int) (min, max float64) {
	if axis == 0 {
		return b.MinX, b.MaxX
	}
	return b.MinY, b.MaxY
}

func coordOf(p Point, axis int) float64 {
	if axis == 0 {
		return p.X
	}
	return p.Y
}

func within(v, k1, k2 float64) bool {
	return v >= k1 && v <= k2
}

// clipFeature clips one boundary-straddling feature. It may return more
// than one feature only for a (multi-)line string with line metrics on,
// where each clipped slice becomes its own feature so it can carry its own
// seg_start/seg_end.
func clipFeature(f *Feature, k1, k2 float64, axis int, lineMetrics bool) []*Feature {
	switch f.Geometry.Type {
	case GeomEmpty:
		return nil

	case GeomPoint:
		if within(coordOf(f.Geometry.Point, axis), k1, k2) {
			return []*Feature{cloneWithGeometry(f, f.Geometry)}
		}
		return nil

	case GeomMultiPoint:
		var pts []Point
		for _, p := range f.Geometry.MultiPoint {
			if within(coordOf(p, axis), k1, k2) {
				pts = append(pts, p)
			}
		}
		if len(pts) == 0 {
			return nil
		}
		return []*Feature{cloneWithGeometry(f, Geometry{Type: GeomMultiPoint, MultiPoint: pts})}

	case GeomLineString:
		slices := clipLine(f.Geometry.Line, k1, k2, axis, lineMetrics)
		return emitLineSlices(f, slices, lineMetrics)

	case GeomMultiLineString:
		var all []Line
		for _, l := range f.Geometry.MultiLine {
			all = append(all, clipLine(l, k1, k2, axis, lineMetrics)...)
		}
		return emitLineSlices(f, all, lineMetrics)

	case GeomPolygon:
		rings := clipPolygonRings(f.Geometry.Polygon, k1, k2, axis)
		if rings == nil {
			return nil
		}
		return []*Feature{cloneWithGeometry(f, Geometry{Type: GeomPolygon, Polygon: rings})}

	case GeomMultiPolygon:
		var polys [][]Ring
		for _, poly := range f.Geometry.MultiPolygon {
			rings := clipPolygonRings(poly, k1, k2, axis)
			if rings != nil {
				polys = append(polys, rings)
			}
		}
		if len(polys) == 0 {
			return nil
		}
		return []*Feature{cloneWithGeometry(f, Geometry{Type: GeomMultiPolygon, MultiPolygon: polys})}

	case GeomCollection:
		var geoms []Geometry
		for _, sub := range f.Geometry.Collection {
			g, ok := clipSubGeometry(sub, k1, k2, axis, lineMetrics)
			if ok {
				geoms = append(geoms, g)
			}
		}
		if len(geoms) == 0 {
			return nil
		}
		return []*Feature{cloneWithGeometry(f, Geometry{Type: GeomCollection, Collection: geoms})}

	default:
		panic(newError(ErrUnsupportedGeometry, "clip: geometry type %s", f.Geometry.Type))
	}
}

// clipSubGeometry is clipFeature's counterpart for a geometry nested inside
// a geometry-collection: it has no property map or id of its own to
// propagate, so a (multi-)line string always degrades/collapses into a
// single geometry value rather than exploding into several features.
func clipSubGeometry(g Geometry, k1, k2 float64, axis int, lineMetrics bool) (Geometry, bool) {
	switch g.Type {
	case GeomEmpty:
		return Geometry{}, false

	case GeomPoint:
		if within(coordOf(g.Point, axis), k1, k2) {
			return g, true
		}
		return Geometry{}, false

	case GeomMultiPoint:
		var pts []Point
		for _, p := range g.MultiPoint {
			if within(coordOf(p, axis), k1, k2) {
				pts = append(pts, p)
			}
		}
		if len(pts) == 0 {
			return Geometry{}, false
		}
		return Geometry{Type: GeomMultiPoint, MultiPoint: pts}, true

	case GeomLineString:
		return degradeLines(clipLine(g.Line, k1, k2, axis, lineMetrics))

	case GeomMultiLineString:
		var all []Line
		for _, l := range g.MultiLine {
			all = append(all, clipLine(l, k1, k2, axis, lineMetrics)...)
		}
		return degradeLines(all)

	case GeomPolygon:
		rings := clipPolygonRings(g.Polygon, k1, k2, axis)
		if rings == nil {
			return Geometry{}, false
		}
		return Geometry{Type: GeomPolygon, Polygon: rings}, true

	case GeomMultiPolygon:
		var polys [][]Ring
		for _, poly := range g.MultiPolygon {
			rings := clipPolygonRings(poly, k1, k2, axis)
			if rings != nil {
				polys = append(polys, rings)
			}
		}
		if len(polys) == 0 {
			return Geometry{}, false
		}
		return Geometry{Type: GeomMultiPolygon, MultiPolygon: polys}, true

	case GeomCollection:
		var geoms []Geometry
		for _, sub := range g.Collection {
			sg, ok := clipSubGeometry(sub, k1, k2, axis, lineMetrics)
			if ok {
				geoms = append(geoms, sg)
			}
		}
		if len(geoms) == 0 {
			return Geometry{}, false
		}
		return Geometry{Type: GeomCollection, Collection: geoms}, true

	default:
		panic(newError(ErrUnsupportedGeometry, "clip: geometry type %s", g.Type))
	}
}

func emitLineSlices(f *Feature, slices []Line, lineMetrics bool) []*Feature {
	if len(slices) == 0 {
		return nil
	}
	if lineMetrics {
		out := make([]*Feature, len(slices))
		for i, s := range slices {
			out[i] = cloneWithGeometry(f, Geometry{Type: GeomLineString, Line: s})
		}
		return out
	}
	g, ok := degradeLines(slices)
	if !ok {
		return nil
	}
	return []*Feature{cloneWithGeometry(f, g)}
}

func degradeLines(slices []Line) (Geometry, bool) {
	switch len(slices) {
	case 0:
		return Geometry{}, false
	case 1:
		return Geometry{Type: GeomLineString, Line: slices[0]}, true
	default:
		return Geometry{Type: GeomMultiLineString, MultiLine: slices}, true
	}
}

// clipPolygonRings clips the outer ring first; if it clips away to nothing
// the whole polygon is dropped without bothering to clip its holes. Empty
// holes are simply omitted.
func clipPolygonRings(rings []Ring, k1, k2 float64, axis int) []Ring {
	if len(rings) == 0 {
		return nil
	}
	outer := clipRing(rings[0], k1, k2, axis)
	if len(outer.Points) == 0 {
		return nil
	}
	out := []Ring{outer}
	for _, hole := range rings[1:] {
		clipped := clipRing(hole, k1, k2, axis)
		if len(clipped.Points) > 0 {
			out = append(out, clipped)
		}
	}
	return out
}

func cloneWithGeometry(f *Feature, g Geometry) *Feature {
	bbox := emptyBBox()
	n := geometryNumPointsAndBBox(g, &bbox)
	return &Feature{
		Geometry:   g,
		Properties: f.Properties,
		ID:         f.ID,
		BBox:       bbox,
		NumPoints:  n,
	}
}

func geometryNumPointsAndBBox(g Geometry, bbox *BBox) int {
	switch g.Type {
	case GeomPoint:
		extendBBoxPoint(bbox, g.Point)
		return 1
	case GeomMultiPoint:
		for _, p := range g.MultiPoint {
			extendBBoxPoint(bbox, p)
		}
		return len(g.MultiPoint)
	case GeomLineString:
		for _, p := range g.Line.Points {
			extendBBoxPoint(bbox, p)
		}
		return len(g.Line.Points)
	case GeomMultiLineString:
		n := 0
		for _, l := range g.MultiLine {
			for _, p := range l.Points {
				extendBBoxPoint(bbox, p)
			}
			n += len(l.Points)
		}
		return n
	case GeomPolygon:
		n := 0
		for _, r := range g.Polygon {
			for _, p := range r.Points {
				extendBBoxPoint(bbox, p)
			}
			n += len(r.Points)
		}
		return n
	case GeomMultiPolygon:
		n := 0
		for _, poly := range g.MultiPolygon {
			for _, r := range poly {
				for _, p := range r.Points {
					extendBBoxPoint(bbox, p)
				}
				n += len(r.Points)
			}
		}
		return n
	case GeomCollection:
		n := 0
		for _, sub := range g.Collection {
			n += geometryNumPointsAndBBox(sub, bbox)
		}
		return n
	default:
		return 0
	}
}

// side classifies a coordinate as below (-1), inside (0), or above (1) the
// accept strip [k1, k2].
func side(v, k1, k2 float64) int {
	switch {
	case v < k1:
		return -1
	case v > k2:
		return 1
	default:
		return 0
	}
}

func boundary(s int, k1, k2 float64) float64 {
	if s < 0 {
		return k1
	}
	return k2
}

func tParam(ak, bk, k float64) float64 {
	if bk == ak {
		return 0
	}
	return (k - ak) / (bk - ak)
}

// interpAxis linearly interpolates between a and b at parameter t, then
// pins the coordinate on the clip axis to exactly k (the boundary being
// crossed) and marks the vertex as an intersection (Z=1, forcing it to
// survive simplification at every zoom).
func interpAxis(a, b Point, t, k float64, axis int) Point {
	p := Point{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
		Z: 1,
	}
	if axis == 0 {
		p.X = k
	} else {
		p.Y = k
	}
	return p
}

// clipLine implements the canonical six-case strip clip for a single
// polyline, returning its surviving slices. Each slice
// keeps the original line's total Dist (not its own), so that
// seg_start/seg_end remain distances along the whole unclipped line, ready
// to be normalized into mapbox_clip_start/end by the materializer.
func clipLine(line Line, k1, k2 float64, axis int, lineMetrics bool) []Line {
	pts := line.Points
	n := len(pts)
	if n < 2 {
		return nil
	}

	var slices []Line
	var cur []Point
	var sliceStart float64
	lineLen := 0.0

	finalize := func(end float64) {
		if len(cur) > 1 {
			slices = append(slices, Line{
				Points:   cur,
				Dist:     line.Dist,
				SegStart: sliceStart,
				SegEnd:   end,
			})
		}
		cur = nil
	}

	for i := 0; i < n-1; i++ {
		a, b := pts[i], pts[i+1]
		ak, bk := coordOf(a, axis), coordOf(b, axis)
		sa, sb := side(ak, k1, k2), side(bk, k1, k2)

		var segLen float64
		if lineMetrics {
			segLen = math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
		}

		switch {
		case sa == 0 && sb == 0:
			// both endpoints inside the strip: emit a once, then b
			if len(cur) == 0 {
				cur = append(cur, a)
				sliceStart = lineLen
			}
			cur = append(cur, b)
			if i == n-2 {
				finalize(lineLen + segLen)
			}

		case sa == 0 && sb != 0:
			// leaving the strip: emit the intersection and finalize
			if len(cur) == 0 {
				cur = append(cur, a)
				sliceStart = lineLen
			}
			k := boundary(sb, k1, k2)
			t := tParam(ak, bk, k)
			cur = append(cur, interpAxis(a, b, t, k, axis))
			finalize(lineLen + segLen*t)

		case sa != 0 && sb == 0:
			// entering the strip: start a new slice at the intersection
			k := boundary(sa, k1, k2)
			t := tParam(ak, bk, k)
			cur = []Point{interpAxis(a, b, t, k, axis)}
			sliceStart = lineLen + segLen*t
			cur = append(cur, b)
			if i == n-2 {
				finalize(lineLen + segLen)
			}

		case sa != sb:
			// crosses the whole strip in one segment: both intersections
			ka, kb := boundary(sa, k1, k2), boundary(sb, k1, k2)
			t1, t2 := tParam(ak, bk, ka), tParam(ak, bk, kb)
			cur = []Point{interpAxis(a, b, t1, ka, axis), interpAxis(a, b, t2, kb, axis)}
			sliceStart = lineLen + segLen*t1
			finalize(lineLen + segLen*t2)

		default:
			// sa == sb != 0: entirely on one side, no crossing
		}

		lineLen += segLen
	}

	return slices
}

// clipRing clips a linear ring the same way as clipLine but treats it as
// cyclic (the closing edge from the last point back to the first is
// included) and accumulates a single output ring instead of finalizing
// separate slices on exit.
func clipRing(ring Ring, k1, k2 float64, axis int) Ring {
	pts := ring.Points
	n := len(pts)
	if n < 3 {
		return Ring{}
	}

	var out []Point

	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		ak, bk := coordOf(a, axis), coordOf(b, axis)
		sa, sb := side(ak, k1, k2), side(bk, k1, k2)

		switch {
		case sa == 0 && sb == 0:
			if len(out) == 0 {
				out = append(out, a)
			}
			out = append(out, b)

		case sa == 0 && sb != 0:
			if len(out) == 0 {
				out = append(out, a)
			}
			k := boundary(sb, k1, k2)
			t := tParam(ak, bk, k)
			out = append(out, interpAxis(a, b, t, k, axis))

		case sa != 0 && sb == 0:
			k := boundary(sa, k1, k2)
			t := tParam(ak, bk, k)
			out = append(out, interpAxis(a, b, t, k, axis))
			out = append(out, b)

		case sa != sb:
			ka, kb := boundary(sa, k1, k2), boundary(sb, k1, k2)
			t1, t2 := tParam(ak, bk, ka), tParam(ak, bk, kb)
			out = append(out, interpAxis(a, b, t1, ka, axis), interpAxis(a, b, t2, kb, axis))

		default:
			// entirely on one side, no crossing
		}
	}

	if len(out) == 0 {
		return Ring{}
	}
	if out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return Ring{Points: out, Area: ringArea(out)}
}
