// Package geoadapt bridges orb's lon/lat GeoJSON types and the internal/vt
// engine's RawFeature/Tile representation. This is the only package in the
// repository that converts between orb geometries and internal/vt types:
// the engine itself never sees an orb.Geometry — it consumes an
// already-parsed in-memory feature collection, and GeoJSON text parsing
// stays with the callers.
package geoadapt

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/platgeo/geovt/internal/vt"
)

// FromGeoJSON converts an orb GeoJSON feature collection (lon/lat) into the
// RawFeature slice internal/vt.New and internal/vt.GeoJSONToTile consume.
func FromGeoJSON(fc *geojson.FeatureCollection) []vt.RawFeature {
	out := make([]vt.RawFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, vt.RawFeature{
			Geometry:   rawGeometryFromOrb(f.Geometry),
			Properties: vt.Properties(f.Properties),
			ID:         f.ID,
		})
	}
	return out
}

func rawGeometryFromOrb(g orb.Geometry) vt.RawGeometry {
	if g == nil {
		return vt.RawGeometry{Type: vt.GeomEmpty}
	}
	switch geom := g.(type) {
	case orb.Point:
		return vt.RawGeometry{Type: vt.GeomPoint, Point: rawPoint(geom)}
	case orb.MultiPoint:
		return vt.RawGeometry{Type: vt.GeomMultiPoint, MultiPoint: rawPoints(orb.LineString(geom))}
	case orb.LineString:
		return vt.RawGeometry{Type: vt.GeomLineString, Line: rawPoints(geom)}
	case orb.MultiLineString:
		lines := make([][]vt.RawPoint, len(geom))
		for i, ls := range geom {
			lines[i] = rawPoints(ls)
		}
		return vt.RawGeometry{Type: vt.GeomMultiLineString, MultiLine: lines}
	case orb.Ring:
		return vt.RawGeometry{Type: vt.GeomPolygon, Polygon: [][]vt.RawPoint{rawPoints(orb.LineString(geom))}}
	case orb.Polygon:
		rings := make([][]vt.RawPoint, len(geom))
		for i, r := range geom {
			rings[i] = rawPoints(orb.LineString(r))
		}
		return vt.RawGeometry{Type: vt.GeomPolygon, Polygon: rings}
	case orb.MultiPolygon:
		polys := make([][][]vt.RawPoint, len(geom))
		for i, poly := range geom {
			rings := make([][]vt.RawPoint, len(poly))
			for j, r := range poly {
				rings[j] = rawPoints(orb.LineString(r))
			}
			polys[i] = rings
		}
		return vt.RawGeometry{Type: vt.GeomMultiPolygon, MultiPolygon: polys}
	case orb.Collection:
		sub := make([]vt.RawGeometry, len(geom))
		for i, g := range geom {
			sub[i] = rawGeometryFromOrb(g)
		}
		return vt.RawGeometry{Type: vt.GeomCollection, Collection: sub}
	default:
		return vt.RawGeometry{Type: vt.GeomEmpty}
	}
}

func rawPoint(p orb.Point) vt.RawPoint {
	return vt.RawPoint{Lon: p[0], Lat: p[1]}
}

func rawPoints(ls orb.LineString) []vt.RawPoint {
	out := make([]vt.RawPoint, len(ls))
	for i, p := range ls {
		out[i] = rawPoint(p)
	}
	return out
}

// ToGeoJSON converts a materialized tile's int16 tile-local geometry back
// into an orb GeoJSON feature collection, suitable for gzip+JSON
// serialization into a PMTiles tile entry (see internal/service.Archiver).
// Coordinates are tile-pixel values in [-buffer, extent+buffer], not
// lon/lat — callers must not treat the result as WGS84.
func ToGeoJSON(tile *vt.Tile) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, mf := range tile.Features {
		geom := orbFromMGeometry(mf.Geometry)
		if geom == nil {
			continue
		}
		feature := geojson.NewFeature(geom)
		for k, v := range mf.Properties {
			feature.Properties[k] = v
		}
		if mf.ID != nil {
			feature.ID = mf.ID
		}
		fc.Append(feature)
	}
	return fc
}

func orbFromMGeometry(g vt.MGeometry) orb.Geometry {
	switch g.Type {
	case vt.GeomPoint:
		return orbPoint(g.Point)
	case vt.GeomMultiPoint:
		return orbMultiPoint(g.MultiPoint)
	case vt.GeomLineString:
		return orbLineString(g.Line.Points)
	case vt.GeomMultiLineString:
		mls := make(orb.MultiLineString, len(g.MultiLine))
		for i, l := range g.MultiLine {
			mls[i] = orbLineString(l.Points)
		}
		return mls
	case vt.GeomPolygon:
		return orbPolygon(g.Polygon)
	case vt.GeomMultiPolygon:
		mp := make(orb.MultiPolygon, len(g.MultiPolygon))
		for i, rings := range g.MultiPolygon {
			mp[i] = orbPolygon(rings)
		}
		return mp
	case vt.GeomCollection:
		coll := make(orb.Collection, 0, len(g.Collection))
		for _, sub := range g.Collection {
			if o := orbFromMGeometry(sub); o != nil {
				coll = append(coll, o)
			}
		}
		return coll
	default:
		return nil
	}
}

func orbPoint(p vt.MPoint) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}

func orbMultiPoint(pts []vt.MPoint) orb.MultiPoint {
	out := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		out[i] = orbPoint(p)
	}
	return out
}

func orbLineString(pts []vt.MPoint) orb.LineString {
	out := make(orb.LineString, len(pts))
	for i, p := range pts {
		out[i] = orbPoint(p)
	}
	return out
}

func orbPolygon(rings []vt.MRing) orb.Polygon {
	poly := make(orb.Polygon, len(rings))
	for i, r := range rings {
		poly[i] = orb.Ring(orbLineString(r.Points))
	}
	return poly
}

// UnprojectBBox converts a vt.BBox in the unit-square Web Mercator space
// internal/vt.Tile.BBox is tracked in back to WGS84 lon/lat degrees — the
// inverse of internal/vt's forward spherical Mercator projection (see
// project.go's projectPoint). internal/service.Archiver uses this to fill in
// a PMTiles archive header's geographic extent and center, which the engine
// itself has no reason to compute — its tile tree never leaves
// unit-square/tile-local coordinates.
func UnprojectBBox(b vt.BBox) (minLon, minLat, maxLon, maxLat float64) {
	minLon, maxLat = unprojectPoint(b.MinX, b.MinY)
	maxLon, minLat = unprojectPoint(b.MaxX, b.MaxY)
	return
}

// unprojectPoint inverts projectPoint: x = lon/360 + 0.5 and
// y = 0.5 - asinh(tan(lat)) / (2*pi), solving for lon and lat in degrees.
// Mercator y runs north-to-south, so MinY corresponds to the bbox's
// northernmost (max) latitude.
func unprojectPoint(x, y float64) (lon, lat float64) {
	lon = (x - 0.5) * 360
	lat = math.Atan(math.Sinh(math.Pi*(1-2*y))) * 180 / math.Pi
	return
}

// ValidateZXY checks that (z, x, y) names a legal slippy-map tile at zoom z,
// independent of the engine's own EncodeID/DecodeID packing. Used by the
// HTTP tile handler to reject malformed coordinates before they reach
// internal/vt, whose own bounds handling is wrap/empty-tile semantics, not
// request validation.
func ValidateZXY(z uint8, x, y int) error {
	if z > 30 {
		return fmt.Errorf("zoom %d exceeds the 30 supported by tile id packing", z)
	}
	n := 1 << maptile.Zoom(z)
	if x < -n*4 || x > n*4 {
		return fmt.Errorf("x %d out of plausible range for zoom %d", x, z)
	}
	if y < -n*4 || y > n*4 {
		return fmt.Errorf("y %d out of plausible range for zoom %d", y, z)
	}
	return nil
}
