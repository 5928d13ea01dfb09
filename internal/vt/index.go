package vt

// Index is the top-level tile index: it owns every materialized tile,
// orchestrates the split/retain recursion during build, and serves
// get_tile with lazy drill-down from the deepest cached ancestor that
// still retains source features.
type Index struct {
	Opts  Options
	genID uint64

	tiles map[uint64]*Tile
	stats map[uint8]int
	total int
}

// New builds an index from an already-parsed geographic feature
// collection: project, wrap, then recursively split starting at the root
// tile.
func New(features []RawFeature, opts Options) *Index {
	opts = withDefaults(opts)
	idx := &Index{
		Opts:  opts,
		tiles: make(map[uint64]*Tile),
		stats: make(map[uint8]int),
	}

	var nextID *uint64
	if opts.GenerateID {
		nextID = &idx.genID
	}

	projected := Project(features, opts, nextID)
	wrapped := Wrap(projected, float64(opts.Buffer), opts.Extent)
	idx.split(wrapped, 0, 0, 0, 0, 0, 0)

	return idx
}

// split implements the recursive build/drill-down algorithm. cz/cx/cy carry
// the optional drill-down target; cz == 0 means "build mode, no target".
//
// An empty strip never allocates a tile: a tile exists in the index only
// if it received at least one feature during construction, so emptiness
// is checked before materializing.
func (idx *Index) split(features []*Feature, z uint8, x, y uint32, cz uint8, cx, cy uint32) {
	if len(features) == 0 {
		return
	}

	z2 := uint64(1) << z
	id := EncodeID(z, x, y)
	tile, exists := idx.tiles[id]
	if !exists {
		tol := 0.0
		if int(z) != idx.Opts.MaxZoom {
			tol = idx.Opts.Tolerance / (float64(z2) * float64(idx.Opts.Extent))
		}
		tile = materialize(z, x, y, z2, idx.Opts.Extent, tol, idx.Opts.LineMetrics, features)
		idx.tiles[id] = tile
		idx.stats[z]++
		idx.total++
	}

	buildMode := cz == 0
	if buildMode {
		if int(z) == idx.Opts.IndexMaxZoom || tile.NumPoints <= idx.Opts.IndexMaxPoints {
			tile.Source = features
			return
		}
	} else {
		if int(z) == idx.Opts.MaxZoom {
			tile.Source = nil
			return
		}
		if z == cz {
			// Target reached. Keep the source so a later, deeper
			// drill-down can continue from this tile.
			tile.Source = features
			return
		}
		shift := cz - z
		if x != cx>>shift || y != cy>>shift {
			// Not an ancestor of the target: this quadrant was
			// materialized as a side effect of the drill. It keeps its
			// source for the same reason the target does.
			tile.Source = features
			return
		}
	}

	// Past this point the tile is committed to splitting into children, so
	// its retained source is no longer needed.
	tile.Source = nil

	p := 0.5 * float64(idx.Opts.Buffer) / float64(idx.Opts.Extent)
	fz2 := float64(z2)
	fx, fy := float64(x), float64(y)
	lm := idx.Opts.LineMetrics

	minX, maxX := featuresAxisExtent(features, 0)
	left := Clip(features, (fx-p)/fz2, (fx+0.5+p)/fz2, 0, minX, maxX, lm)
	right := Clip(features, (fx+0.5-p)/fz2, (fx+1+p)/fz2, 0, minX, maxX, lm)

	if len(left) > 0 {
		minY, maxY := featuresAxisExtent(left, 1)
		top := Clip(left, (fy-p)/fz2, (fy+0.5+p)/fz2, 1, minY, maxY, lm)
		bottom := Clip(left, (fy+0.5-p)/fz2, (fy+1+p)/fz2, 1, minY, maxY, lm)
		if len(top) > 0 {
			idx.split(top, z+1, 2*x, 2*y, cz, cx, cy)
		}
		if len(bottom) > 0 {
			idx.split(bottom, z+1, 2*x, 2*y+1, cz, cx, cy)
		}
	}

	if len(right) > 0 {
		minY, maxY := featuresAxisExtent(right, 1)
		top := Clip(right, (fy-p)/fz2, (fy+0.5+p)/fz2, 1, minY, maxY, lm)
		bottom := Clip(right, (fy+0.5-p)/fz2, (fy+1+p)/fz2, 1, minY, maxY, lm)
		if len(top) > 0 {
			idx.split(top, z+1, 2*x+1, 2*y, cz, cx, cy)
		}
		if len(bottom) > 0 {
			idx.split(bottom, z+1, 2*x+1, 2*y+1, cz, cx, cy)
		}
	}
}

func featuresAxisExtent(features []*Feature, axis int) (min, max float64) {
	b := emptyBBox()
	for _, f := range features {
		b = b.Union(f.BBox)
	}
	return axisBBox(b, axis)
}

// GetTile returns the materialized tile at (z, x, y), drilling down from
// the deepest cached ancestor that still retains source features if the
// tile has not been materialized yet. x wraps by world (x and x+k*2^z
// produce the same tile); y does not wrap — an out-of-range y is legal and
// simply yields the empty-tile sentinel. Requesting z > max_zoom fails
// with ErrZoomOutOfRange, the only user-triggerable error this package
// returns.
func (idx *Index) GetTile(z uint8, x, y int) (*Tile, error) {
	if int(z) > idx.Opts.MaxZoom {
		return nil, newError(ErrZoomOutOfRange, "requested zoom %d exceeds max_zoom %d", z, idx.Opts.MaxZoom)
	}

	z2 := int64(1) << z
	xw := int64(x) % z2
	if xw < 0 {
		xw += z2
	}
	ux := uint32(xw)

	if y < 0 || int64(y) >= z2 {
		return emptyTile(z, ux, uint32(y)), nil
	}
	uy := uint32(y)

	id := EncodeID(z, ux, uy)
	if t, ok := idx.tiles[id]; ok {
		return t, nil
	}

	z0, x0, y0 := z, ux, uy
	for z0 > 0 {
		z0--
		x0 /= 2
		y0 /= 2
		pid := EncodeID(z0, x0, y0)
		parent, ok := idx.tiles[pid]
		if !ok {
			continue
		}
		if parent.Source == nil {
			break
		}
		idx.split(parent.Source, z0, x0, y0, z, ux, uy)
		if t, ok := idx.tiles[id]; ok {
			return t, nil
		}
		break
	}

	return emptyTile(z, ux, uy), nil
}

// GetTileShared is GetTile for callers that intend to retain the returned
// tile past subsequent index mutations. A tile's materialized contents
// (Features, BBox, counters) are never changed in place: UpdateFeatures
// replaces the index's map entry with a new *Tile, and drill-down only
// sets or clears an existing tile's retained Source. So this is GetTile
// under another name, kept distinct to mirror the engine's public
// operation list.
func (idx *Index) GetTileShared(z uint8, x, y int) (*Tile, error) {
	return idx.GetTile(z, x, y)
}

func emptyTile(z uint8, x, y uint32) *Tile {
	return &Tile{Z: z, X: x, Y: y, BBox: emptyBBox()}
}

// Stats returns a copy of the zoom -> materialized-tile-count histogram.
func (idx *Index) Stats() map[uint8]int {
	out := make(map[uint8]int, len(idx.stats))
	for z, n := range idx.stats {
		out[z] = n
	}
	return out
}

// Total returns the number of tiles materialized so far.
func (idx *Index) Total() int {
	return idx.total
}

// Tiles exposes the internal (z,x,y)-id -> tile map for introspection.
// Callers must not mutate the returned map or the tiles it references.
func (idx *Index) Tiles() map[uint64]*Tile {
	return idx.tiles
}
