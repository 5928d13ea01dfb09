package vt

import "testing"

func pts(coords ...float64) []Point {
	if len(coords)%2 != 0 {
		panic("clip_test: odd coordinate count")
	}
	out := make([]Point, len(coords)/2)
	for i := range out {
		out[i] = Point{X: coords[2*i], Y: coords[2*i+1]}
	}
	return out
}

func xy(p []Point) [][2]float64 {
	out := make([][2]float64, len(p))
	for i, v := range p {
		out[i] = [2]float64{v.X, v.Y}
	}
	return out
}

func assertXY(t *testing.T, label string, got []Point, want [][2]float64) {
	t.Helper()
	gotXY := xy(got)
	if len(gotXY) != len(want) {
		t.Fatalf("%s: got %d points %v, want %d points %v", label, len(gotXY), gotXY, len(want), want)
	}
	for i := range want {
		if gotXY[i] != want[i] {
			t.Errorf("%s: point %d = %v, want %v (full got=%v want=%v)", label, i, gotXY[i], want[i], gotXY, want)
		}
	}
}

// A zigzag polyline/polygon fixture exercising both inclusive and
// exclusive strip boundaries in one shape.
var clipFixture = pts(
	0, 0, 50, 0, 50, 10, 20, 10, 20, 20, 30, 20, 30, 30,
	50, 30, 50, 40, 25, 40, 25, 50, 0, 50, 0, 60, 25, 60,
)

func TestClipPolyline(t *testing.T) {
	line := Line{Points: clipFixture, Dist: lineDist(clipFixture)}
	slices := clipLine(line, 10, 40, 0, false)

	want := [][][2]float64{
		{{10, 0}, {40, 0}},
		{{40, 10}, {20, 10}, {20, 20}, {30, 20}, {30, 30}, {40, 30}},
		{{40, 40}, {25, 40}, {25, 50}, {10, 50}},
		{{10, 60}, {25, 60}},
	}

	if len(slices) != len(want) {
		t.Fatalf("got %d slices, want %d", len(slices), len(want))
	}
	for i, s := range slices {
		assertXY(t, "slice", s.Points, want[i])
	}
}

func TestClipPolygon(t *testing.T) {
	ring := Ring{Points: clipFixture, Area: ringArea(clipFixture)}
	clipped := clipRing(ring, 10, 40, 0)

	want := [][2]float64{
		{10, 0}, {40, 0}, {40, 10}, {20, 10}, {20, 20}, {30, 20}, {30, 30},
		{40, 30}, {40, 40}, {25, 40}, {25, 50}, {10, 50}, {10, 60}, {25, 60},
		{10, 24}, {10, 0},
	}

	assertXY(t, "ring", clipped.Points, want)
}

func TestClipTrivialAccept(t *testing.T) {
	f := &Feature{BBox: BBox{MinX: 0.2, MinY: 0.2, MaxX: 0.3, MaxY: 0.3}}
	features := []*Feature{f}
	got := Clip(features, 0, 1, 0, 0.2, 0.3, false)
	if len(got) != 1 || got[0] != f {
		t.Fatalf("trivial-accept clip should return input unchanged, got %v", got)
	}
}

func TestClipTrivialReject(t *testing.T) {
	f := &Feature{BBox: BBox{MinX: 0.8, MinY: 0.8, MaxX: 0.9, MaxY: 0.9}}
	features := []*Feature{f}
	got := Clip(features, 0, 0.5, 0, 0.8, 0.9, false)
	if got != nil {
		t.Fatalf("trivial-reject clip should return empty, got %v", got)
	}
}

func TestClipPointRetainsInclusiveBounds(t *testing.T) {
	f := &Feature{
		Geometry: Geometry{Type: GeomPoint, Point: Point{X: 40, Y: 5}},
		BBox:     BBox{MinX: 40, MinY: 5, MaxX: 40, MaxY: 5},
	}
	got := Clip([]*Feature{f}, 10, 40, 0, 0, 100, false)
	if len(got) != 1 {
		t.Fatalf("point exactly at k2 should be retained (k1 <= coord <= k2), got %v", got)
	}
}
