package vt

// Options configures index construction and tile materialization.
type Options struct {
	// MaxZoom is the deepest zoom to which tiles may be drilled on request.
	MaxZoom int
	// IndexMaxZoom is the deepest zoom pre-materialized by New.
	IndexMaxZoom int
	// IndexMaxPoints stops pre-building a branch once a tile has this many
	// points or fewer.
	IndexMaxPoints int
	// Tolerance is the Douglas-Peucker tolerance at MaxZoom, in tile-pixel
	// units. The per-zoom tolerance is Tolerance / (2^z * Extent).
	Tolerance float64
	// Extent is the target tile coordinate resolution.
	Extent int
	// Buffer is the overlap included on each tile side, in tile-pixel units.
	Buffer int
	// LineMetrics enables per-slice mapbox_clip_start/mapbox_clip_end
	// tracking for line strings.
	LineMetrics bool
	// GenerateID assigns a monotonically increasing id to features that
	// lack one.
	GenerateID bool
}

// DefaultOptions returns the engine's documented defaults, matching
// geojson-vt's historical option defaults.
func DefaultOptions() Options {
	return Options{
		MaxZoom:        18,
		IndexMaxZoom:   5,
		IndexMaxPoints: 100000,
		Tolerance:      3,
		Extent:         4096,
		Buffer:         64,
		LineMetrics:    false,
		GenerateID:     false,
	}
}

// withDefaults substitutes DefaultOptions() for the all-zero value, so
// callers can pass vt.Options{} for "just use the defaults". A partially
// populated Options keeps its explicit zeros (Tolerance: 0 disables
// simplification, Buffer: 0 disables overlap) except Extent, whose zero is
// never meaningful — it would divide every per-zoom tolerance by zero.
func withDefaults(o Options) Options {
	if o == (Options{}) {
		return DefaultOptions()
	}
	if o.Extent == 0 {
		o.Extent = DefaultOptions().Extent
	}
	return o
}
