package vt

// Wrap produces a feature list extended by left/right world-copy replicas
// so that geometry crossing the antimeridian (or simply within buffer of
// the unit square's left/right edge) is available to the splitter without
// any special-casing in the clipper.
func Wrap(features []*Feature, buffer float64, extent int) []*Feature {
	b := buffer / float64(extent)

	minAll, maxAll := featuresAxisExtent(features, 0)

	left := Clip(features, -1-b, b, 0, minAll, maxAll, false)
	right := Clip(features, 1-b, 2+b, 0, minAll, maxAll, false)

	if len(left) == 0 && len(right) == 0 {
		return features
	}

	center := Clip(features, -b, 1+b, 0, minAll, maxAll, false)

	out := make([]*Feature, 0, len(left)+len(center)+len(right))
	for _, f := range left {
		out = append(out, shiftX(f, 1))
	}
	out = append(out, center...)
	for _, f := range right {
		out = append(out, shiftX(f, -1))
	}
	return out
}

// shiftX returns a copy of f with every x coordinate shifted by dx and its
// bbox updated to match; the shared property map is aliased, not copied.
func shiftX(f *Feature, dx float64) *Feature {
	g := shiftGeometryX(f.Geometry, dx)
	return &Feature{
		Geometry:   g,
		Properties: f.Properties,
		ID:         f.ID,
		BBox:       BBox{MinX: f.BBox.MinX + dx, MinY: f.BBox.MinY, MaxX: f.BBox.MaxX + dx, MaxY: f.BBox.MaxY},
		NumPoints:  f.NumPoints,
	}
}

func shiftGeometryX(g Geometry, dx float64) Geometry {
	switch g.Type {
	case GeomPoint:
		return Geometry{Type: GeomPoint, Point: shiftPointX(g.Point, dx)}
	case GeomMultiPoint:
		pts := make([]Point, len(g.MultiPoint))
		for i, p := range g.MultiPoint {
			pts[i] = shiftPointX(p, dx)
		}
		return Geometry{Type: GeomMultiPoint, MultiPoint: pts}
	case GeomLineString:
		return Geometry{Type: GeomLineString, Line: shiftLineX(g.Line, dx)}
	case GeomMultiLineString:
		lines := make([]Line, len(g.MultiLine))
		for i, l := range g.MultiLine {
			lines[i] = shiftLineX(l, dx)
		}
		return Geometry{Type: GeomMultiLineString, MultiLine: lines}
	case GeomPolygon:
		return Geometry{Type: GeomPolygon, Polygon: shiftRingsX(g.Polygon, dx)}
	case GeomMultiPolygon:
		polys := make([][]Ring, len(g.MultiPolygon))
		for i, poly := range g.MultiPolygon {
			polys[i] = shiftRingsX(poly, dx)
		}
		return Geometry{Type: GeomMultiPolygon, MultiPolygon: polys}
	case GeomCollection:
		geoms := make([]Geometry, len(g.Collection))
		for i, sub := range g.Collection {
			geoms[i] = shiftGeometryX(sub, dx)
		}
		return Geometry{Type: GeomCollection, Collection: geoms}
	default:
		return g
	}
}

func shiftPointX(p Point, dx float64) Point {
	p.X += dx
	return p
}

func shiftLineX(l Line, dx float64) Line {
	pts := make([]Point, len(l.Points))
	for i, p := range l.Points {
		pts[i] = shiftPointX(p, dx)
	}
	l.Points = pts
	return l
}

func shiftRingsX(rings []Ring, dx float64) []Ring {
	out := make([]Ring, len(rings))
	for i, r := range rings {
		pts := make([]Point, len(r.Points))
		for j, p := range r.Points {
			pts[j] = shiftPointX(p, dx)
		}
		out[i] = Ring{Points: pts, Area: r.Area}
	}
	return out
}
