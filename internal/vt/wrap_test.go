package vt

import (
	"math"
	"testing"
)

func projectedPointFeature(x, y float64, id interface{}) *Feature {
	return &Feature{
		Geometry:  Geometry{Type: GeomPoint, Point: Point{X: x, Y: y, Z: 1}},
		ID:        id,
		BBox:      BBox{MinX: x, MinY: y, MaxX: x, MaxY: y},
		NumPoints: 1,
	}
}

func TestWrapNoCrossingReturnsInputUnchanged(t *testing.T) {
	f := projectedPointFeature(0.5, 0.5, nil)
	features := []*Feature{f}

	wrapped := Wrap(features, 64, 4096)
	if len(wrapped) != 1 || wrapped[0] != f {
		t.Fatalf("wrapping features away from the antimeridian changed them: %v", wrapped)
	}
}

func TestWrapNearAntimeridianAddsWorldCopy(t *testing.T) {
	// x close enough to 1 to fall inside the right band's buffer.
	f := projectedPointFeature(0.999, 0.5, "edge")
	wrapped := Wrap([]*Feature{f}, 64, 4096)

	if len(wrapped) != 2 {
		t.Fatalf("got %d features, want center + one shifted world copy", len(wrapped))
	}

	var shifted *Feature
	for _, w := range wrapped {
		if w.Geometry.Point.X < 0.5 {
			shifted = w
		}
	}
	if shifted == nil {
		t.Fatal("no left-shifted world copy produced")
	}
	if math.Abs(shifted.Geometry.Point.X-(-0.001)) > 1e-12 {
		t.Errorf("shifted copy at x=%v, want -0.001", shifted.Geometry.Point.X)
	}
	if shifted.ID != "edge" {
		t.Errorf("shifted copy lost its id: %v", shifted.ID)
	}
	if math.Abs(shifted.BBox.MinX-(-0.001)) > 1e-12 {
		t.Errorf("shifted copy bbox not updated: %+v", shifted.BBox)
	}
}

func TestWrapSharesPropertyMap(t *testing.T) {
	props := Properties{"name": "dateline"}
	f := projectedPointFeature(0.999, 0.5, nil)
	f.Properties = props

	wrapped := Wrap([]*Feature{f}, 64, 4096)
	for _, w := range wrapped {
		if !samePropertyMap(w.Properties, props) {
			t.Fatalf("world copy cloned the property map instead of aliasing it")
		}
	}
}
