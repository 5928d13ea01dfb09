// Package vt slices a whole-planet GeoJSON feature collection into a
// pyramid of small, self-contained vector tiles indexed by the slippy-map
// triple (z, x, y).
//
// The package takes an already-parsed in-memory feature collection and
// hands back tiles as in-memory geometry collections in tile-local integer
// coordinates; it does not parse GeoJSON text, touch the filesystem, log,
// or accept CLI flags — those are the caller's job (see internal/geoadapt,
// internal/source, cmd/geovt).
package vt
