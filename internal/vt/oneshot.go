package vt

// GeoJSONToTile produces a single tile at (z, x, y) directly from a raw
// feature collection, without building an index.
// wrap applies the antimeridian wrapper before clipping; clip restricts
// the projected features to this tile's buffered strip (always done when
// opts.LineMetrics is on, since line metrics only make sense on already
// clipped slices). Feature ids are never regenerated, regardless of
// opts.GenerateID.
func GeoJSONToTile(features []RawFeature, z uint8, x, y uint32, opts Options, wrap, clip bool) *Tile {
	opts = withDefaults(opts)
	z2 := uint64(1) << z
	fz2 := float64(z2)
	tol := opts.Tolerance / (fz2 * float64(opts.Extent))

	feats := projectWithTolerance(features, tol*tol, opts, nil)

	if wrap {
		feats = Wrap(feats, float64(opts.Buffer), opts.Extent)
	}

	if clip || opts.LineMetrics {
		p := float64(opts.Buffer) / float64(opts.Extent)
		fx, fy := float64(x), float64(y)

		minX, maxX := featuresAxisExtent(feats, 0)
		feats = Clip(feats, (fx-p)/fz2, (fx+1+p)/fz2, 0, minX, maxX, opts.LineMetrics)

		minY, maxY := featuresAxisExtent(feats, 1)
		feats = Clip(feats, (fy-p)/fz2, (fy+1+p)/fz2, 1, minY, maxY, opts.LineMetrics)
	}

	return materialize(z, x, y, z2, opts.Extent, tol, opts.LineMetrics, feats)
}
