package vt

import "math"

// Project converts an already-parsed collection of geographic (lon/lat)
// features into projected features: unit-square Mercator coordinates, line
// distances, ring areas, and Douglas-Peucker vertex importance.
//
// nextID, if non-nil, is used to assign a monotonic synthetic id to any
// feature lacking one when opts.GenerateID is set; it is advanced in place.
// Pass nil to never synthesize ids (the one-shot path never does).
func Project(features []RawFeature, opts Options, nextID *uint64) []*Feature {
	opts = withDefaults(opts)
	z2max := math.Pow(2, float64(opts.MaxZoom))
	tolerance := opts.Tolerance / (z2max * float64(opts.Extent))
	return projectWithTolerance(features, tolerance*tolerance, opts, nextID)
}

// projectWithTolerance is Project with an explicit Douglas-Peucker
// tagging tolerance (already squared) instead of one derived from
// opts.MaxZoom. The one-shot path (oneshot.go) uses this directly since it
// tags importance relative to a single target zoom rather than the
// deepest zoom an index might ever drill to.
func projectWithTolerance(features []RawFeature, sqTolerance float64, opts Options, nextID *uint64) []*Feature {
	out := make([]*Feature, 0, len(features))
	for _, rf := range features {
		f := projectFeature(rf, sqTolerance, opts, nextID)
		if f.Geometry.Type == GeomEmpty && f.NumPoints == 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}

func projectFeature(rf RawFeature, sqTolerance float64, opts Options, nextID *uint64) *Feature {
	id := rf.ID
	if id == nil && opts.GenerateID && nextID != nil {
		id = *nextID
		*nextID++
	}

	bbox := emptyBBox()
	geom, numPoints := projectGeometry(rf.Geometry, sqTolerance, &bbox)

	return &Feature{
		Geometry:   geom,
		Properties: rf.Properties,
		ID:         id,
		BBox:       bbox,
		NumPoints:  numPoints,
	}
}

func projectGeometry(g RawGeometry, sqTolerance float64, bbox *BBox) (Geometry, int) {
	switch g.Type {
	case GeomPoint:
		p := projectPoint(g.Point)
		p.Z = 1
		extendBBoxPoint(bbox, p)
		return Geometry{Type: GeomPoint, Point: p}, 1

	case GeomMultiPoint:
		pts := make([]Point, len(g.MultiPoint))
		for i, rp := range g.MultiPoint {
			pts[i] = projectPoint(rp)
			pts[i].Z = 1
			extendBBoxPoint(bbox, pts[i])
		}
		return Geometry{Type: GeomMultiPoint, MultiPoint: pts}, len(pts)

	case GeomLineString:
		line := projectLine(g.Line, sqTolerance, bbox)
		return Geometry{Type: GeomLineString, Line: line}, len(line.Points)

	case GeomMultiLineString:
		lines := make([]Line, len(g.MultiLine))
		n := 0
		for i, rl := range g.MultiLine {
			lines[i] = projectLine(rl, sqTolerance, bbox)
			n += len(lines[i].Points)
		}
		return Geometry{Type: GeomMultiLineString, MultiLine: lines}, n

	case GeomPolygon:
		rings := make([]Ring, len(g.Polygon))
		n := 0
		for i, rr := range g.Polygon {
			rings[i] = projectRing(rr, sqTolerance, bbox)
			n += len(rings[i].Points)
		}
		return Geometry{Type: GeomPolygon, Polygon: rings}, n

	case GeomMultiPolygon:
		polys := make([][]Ring, len(g.MultiPolygon))
		n := 0
		for i, poly := range g.MultiPolygon {
			rings := make([]Ring, len(poly))
			for j, rr := range poly {
				rings[j] = projectRing(rr, sqTolerance, bbox)
				n += len(rings[j].Points)
			}
			polys[i] = rings
		}
		return Geometry{Type: GeomMultiPolygon, MultiPolygon: polys}, n

	case GeomCollection:
		geoms := make([]Geometry, len(g.Collection))
		n := 0
		for i, sub := range g.Collection {
			var sn int
			geoms[i], sn = projectGeometry(sub, sqTolerance, bbox)
			n += sn
		}
		return Geometry{Type: GeomCollection, Collection: geoms}, n

	default:
		return Geometry{Type: GeomEmpty}, 0
	}
}

func projectLine(raw []RawPoint, sqTolerance float64, bbox *BBox) Line {
	pts := make([]Point, len(raw))
	for i, rp := range raw {
		pts[i] = projectPoint(rp)
		extendBBoxPoint(bbox, pts[i])
	}
	simplify(pts, sqTolerance)
	return Line{Points: pts, Dist: lineDist(pts)}
}

func projectRing(raw []RawPoint, sqTolerance float64, bbox *BBox) Ring {
	pts := make([]Point, len(raw))
	for i, rp := range raw {
		pts[i] = projectPoint(rp)
		extendBBoxPoint(bbox, pts[i])
	}
	simplify(pts, sqTolerance)
	return Ring{Points: pts, Area: ringArea(pts)}
}

// projectPoint applies the spherical Web Mercator forward projection:
// x = lon/360 + 0.5
// y = 0.5 - log((1+sin(lat*pi/180)) / (1-sin(lat*pi/180))) / (4*pi)
// clamped to [0, 1].
func projectPoint(p RawPoint) Point {
	sinLat := math.Sin(p.Lat * math.Pi / 180)
	y := 0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)
	if y < 0 {
		y = 0
	} else if y > 1 {
		y = 1
	}
	return Point{X: p.Lon/360 + 0.5, Y: y}
}

// lineDist is the Manhattan length of the polyline in unit-square units.
func lineDist(pts []Point) float64 {
	var dist float64
	for i := 1; i < len(pts); i++ {
		dist += math.Abs(pts[i].X-pts[i-1].X) + math.Abs(pts[i].Y-pts[i-1].Y)
	}
	return dist
}

// ringArea is |sum(x_i*y_i+1 - x_i+1*y_i)| / 2.
func ringArea(pts []Point) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// simplify annotates interior vertices of a (poly)line with their
// Douglas-Peucker importance: endpoints always get Z=1; an interior
// vertex whose squared perpendicular distance from the
// chord it would collapse into exceeds sqTolerance gets that distance
// written into Z and the walk recurses on both halves; all other interior
// vertices are left at Z=0 (the zero value). No vertex is deleted — only
// annotated; deletion happens later, per zoom, in the materializer.
func simplify(pts []Point, sqTolerance float64) {
	n := len(pts)
	if n == 0 {
		return
	}
	pts[0].Z = 1
	pts[n-1].Z = 1
	if n < 3 {
		return
	}

	type span struct{ first, last int }
	stack := []span{{0, n - 1}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maxSqDist := 0.0
		index := -1
		for i := top.first + 1; i < top.last; i++ {
			d := sqSegDist(pts[i], pts[top.first], pts[top.last])
			if d > maxSqDist {
				index = i
				maxSqDist = d
			}
		}

		if maxSqDist > sqTolerance {
			pts[index].Z = maxSqDist
			stack = append(stack, span{top.first, index}, span{index, top.last})
		}
	}
}

// sqSegDist is the squared distance from p to the closest point of the
// segment a-b.
func sqSegDist(p, a, b Point) float64 {
	x, y := a.X, a.Y
	dx, dy := b.X-x, b.Y-y

	if dx != 0 || dy != 0 {
		t := ((p.X-x)*dx + (p.Y-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = b.X, b.Y
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx = p.X - x
	dy = p.Y - y
	return dx*dx + dy*dy
}

func extendBBoxPoint(b *BBox, p Point) {
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
}
