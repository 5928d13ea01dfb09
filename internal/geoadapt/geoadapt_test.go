package geoadapt

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/platgeo/geovt/internal/vt"
)

func TestFromGeoJSONPoint(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{-122.4, 37.8})
	f.Properties["name"] = "sf"
	f.ID = "a"
	fc.Append(f)

	raw := FromGeoJSON(fc)
	if len(raw) != 1 {
		t.Fatalf("got %d features, want 1", len(raw))
	}
	if raw[0].Geometry.Type != vt.GeomPoint {
		t.Fatalf("got type %v, want GeomPoint", raw[0].Geometry.Type)
	}
	if raw[0].Geometry.Point.Lon != -122.4 || raw[0].Geometry.Point.Lat != 37.8 {
		t.Fatalf("got point %+v, want (-122.4, 37.8)", raw[0].Geometry.Point)
	}
	if raw[0].ID != "a" {
		t.Fatalf("got id %v, want a", raw[0].ID)
	}
}

func TestFromGeoJSONPolygonWithHole(t *testing.T) {
	poly := orb.Polygon{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}},
		{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}},
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(poly))

	raw := FromGeoJSON(fc)
	if raw[0].Geometry.Type != vt.GeomPolygon {
		t.Fatalf("got type %v, want GeomPolygon", raw[0].Geometry.Type)
	}
	if len(raw[0].Geometry.Polygon) != 2 {
		t.Fatalf("got %d rings, want 2 (outer + hole)", len(raw[0].Geometry.Polygon))
	}
}

func TestToGeoJSONRoundTripsProperties(t *testing.T) {
	tile := &vt.Tile{
		Features: []*vt.MFeature{
			{
				Geometry:   vt.MGeometry{Type: vt.GeomPoint, Point: vt.MPoint{X: 100, Y: 200}},
				Properties: vt.Properties{"name": "sf"},
				ID:         "a",
			},
		},
	}

	fc := ToGeoJSON(tile)
	if len(fc.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(fc.Features))
	}
	f := fc.Features[0]
	if f.Properties["name"] != "sf" {
		t.Fatalf("got properties %v, want name=sf", f.Properties)
	}
	if f.ID != "a" {
		t.Fatalf("got id %v, want a", f.ID)
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok || pt[0] != 100 || pt[1] != 200 {
		t.Fatalf("got geometry %+v, want point (100,200)", f.Geometry)
	}
}

func TestValidateZXY(t *testing.T) {
	if err := ValidateZXY(7, 37, 48); err != nil {
		t.Errorf("valid tile rejected: %v", err)
	}
	if err := ValidateZXY(31, 0, 0); err == nil {
		t.Error("zoom 31 accepted, want rejected")
	}
	if err := ValidateZXY(2, 1000, 0); err == nil {
		t.Error("wildly out-of-range x accepted, want rejected")
	}
}
