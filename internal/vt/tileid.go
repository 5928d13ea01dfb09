package vt

// EncodeID packs a (z, x, y) slippy-map coordinate into the single integer
// used as the tile index's map key: id = ((2^z * y + x) * 32) + z. The
// payload term 2^z*y + x takes up to 2z bits, so after the 5-bit shift the
// packing is exact for every tile through z = 29, and at z = 30 for rows
// y < 2^29; the remaining z = 30 rows would need a 65th bit and wrap.
func EncodeID(z uint8, x, y uint32) uint64 {
	z2 := uint64(1) << z
	return ((z2*uint64(y)+uint64(x))*32 + uint64(z))
}

// DecodeID is the exact inverse of EncodeID for any id it produced without
// wrapping (see EncodeID's bounds).
func DecodeID(id uint64) (z uint8, x, y uint32) {
	z = uint8(id & 31)
	rem := id >> 5
	z2 := uint64(1) << z
	x = uint32(rem % z2)
	y = uint32(rem / z2)
	return z, x, y
}
