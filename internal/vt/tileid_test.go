package vt

import "testing"

func TestTileIDRoundTrip(t *testing.T) {
	cases := []struct {
		z    uint8
		x, y uint32
	}{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 1},
		{7, 37, 48},
		{18, 131071, 131071},
		{29, 1<<29 - 1, 1<<29 - 1},
		{30, 1<<30 - 1, 1<<29 - 1}, // deepest row the 64-bit packing holds at z=30
	}

	for _, c := range cases {
		id := EncodeID(c.z, c.x, c.y)
		z, x, y := DecodeID(id)
		if z != c.z || x != c.x || y != c.y {
			t.Errorf("EncodeID(%d,%d,%d)=%d DecodeID -> (%d,%d,%d), want (%d,%d,%d)",
				c.z, c.x, c.y, id, z, x, y, c.z, c.x, c.y)
		}
	}
}

func TestTileIDDistinct(t *testing.T) {
	seen := make(map[uint64]struct{})
	for z := uint8(0); z < 6; z++ {
		n := uint32(1) << z
		for x := uint32(0); x < n; x++ {
			for y := uint32(0); y < n; y++ {
				id := EncodeID(z, x, y)
				if _, ok := seen[id]; ok {
					t.Fatalf("duplicate id %d for (z=%d,x=%d,y=%d)", id, z, x, y)
				}
				seen[id] = struct{}{}
			}
		}
	}
}
