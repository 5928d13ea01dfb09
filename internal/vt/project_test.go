package vt

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestProjectPointOrigin(t *testing.T) {
	p := projectPoint(RawPoint{Lon: 0, Lat: 0})
	if !almostEqual(p.X, 0.5, 1e-9) || !almostEqual(p.Y, 0.5, 1e-9) {
		t.Errorf("project(0,0) = (%v,%v), want (0.5,0.5)", p.X, p.Y)
	}
}

func TestProjectPointAntimeridian(t *testing.T) {
	p := projectPoint(RawPoint{Lon: 180, Lat: 0})
	if !almostEqual(p.X, 1, 1e-9) {
		t.Errorf("project(180,0).X = %v, want 1", p.X)
	}
	p = projectPoint(RawPoint{Lon: -180, Lat: 0})
	if !almostEqual(p.X, 0, 1e-9) {
		t.Errorf("project(-180,0).X = %v, want 0", p.X)
	}
}

func TestProjectPointPoleClamped(t *testing.T) {
	n := projectPoint(RawPoint{Lon: 0, Lat: 90})
	if n.Y < 0 || n.Y > 1 {
		t.Errorf("north pole y = %v, want in [0,1]", n.Y)
	}
	s := projectPoint(RawPoint{Lon: 0, Lat: -90})
	if s.Y < 0 || s.Y > 1 {
		t.Errorf("south pole y = %v, want in [0,1]", s.Y)
	}
}

func TestLineDistManhattan(t *testing.T) {
	line := pts(0, 0, 3, 0, 3, 4)
	d := lineDist(line)
	if !almostEqual(d, 7, 1e-9) {
		t.Errorf("lineDist = %v, want 7", d)
	}
}

func TestRingAreaUnitSquare(t *testing.T) {
	ring := pts(0, 0, 1, 0, 1, 1, 0, 1)
	a := ringArea(ring)
	if !almostEqual(a, 1, 1e-9) {
		t.Errorf("ringArea = %v, want 1", a)
	}
}

func TestSimplifyEndpointsAlwaysImportant(t *testing.T) {
	p := pts(0, 0, 1, 0.0001, 2, 0)
	simplify(p, 1e6) // tolerance huge enough to drop the interior point
	if p[0].Z != 1 || p[len(p)-1].Z != 1 {
		t.Fatalf("endpoints must carry Z=1, got %v", p)
	}
	if p[1].Z != 0 {
		t.Errorf("interior point below tolerance should be Z=0, got %v", p[1].Z)
	}
}

func TestSimplifyKeepsSignificantVertex(t *testing.T) {
	p := pts(0, 0, 1, 10, 2, 0)
	simplify(p, 0.01)
	if p[1].Z <= 0.01 {
		t.Errorf("significant interior vertex should have Z > tolerance, got %v", p[1].Z)
	}
}

func TestSimplifyNeverDeletesVertices(t *testing.T) {
	p := pts(0, 0, 1, 0.0001, 2, 0, 3, 0.0001, 4, 0)
	before := len(p)
	simplify(p, 1e6)
	if len(p) != before {
		t.Fatalf("simplify must not delete vertices, len changed from %d to %d", before, len(p))
	}
}
