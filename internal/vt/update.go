package vt

// UpdateFeatures surgically adds and/or removes features from every
// already-materialized tile. update maps a feature id to a list of
// updates. Every id named in update is first removed from each tile; a nil
// entry adds nothing back, and a non-nil entry then adds a feature under
// that id (its own RawFeature.ID is overwritten with the map key).
//
// Removed ids are also purged from each tile's retained source features,
// so a later drill-down cannot resurrect a feature this call removed.
//
// Each affected tile is replaced with a freshly built copy rather than
// mutated in place, so a *Tile obtained from an earlier GetTile call
// remains a valid, unaffected snapshot.
func (idx *Index) UpdateFeatures(update map[interface{}][]*RawFeature) {
	if len(update) == 0 {
		return
	}

	var additions []RawFeature
	for id, list := range update {
		for _, rf := range list {
			if rf == nil {
				continue
			}
			f := *rf
			f.ID = id
			additions = append(additions, f)
		}
	}

	var newFeatures []*Feature
	if len(additions) > 0 {
		projected := Project(additions, idx.Opts, nil)
		newFeatures = Wrap(projected, float64(idx.Opts.Buffer), idx.Opts.Extent)
	}

	// Full-tile clip margin. The split recursion overlaps half-tile strips
	// by 0.5*buffer at the parent zoom, which works out to a full buffer
	// margin around each tile at its own zoom; inserting with the same
	// margin keeps updated tiles coextensive with originally built ones.
	p := float64(idx.Opts.Buffer) / float64(idx.Opts.Extent)
	lm := idx.Opts.LineMetrics

	for id, tile := range idx.tiles {
		touched := false

		features := append([]*MFeature(nil), tile.Features...)
		idIndex := make(map[interface{}][]int, len(tile.idIndex))
		for k, v := range tile.idIndex {
			idIndex[k] = append([]int(nil), v...)
		}
		source := append([]*Feature(nil), tile.Source...)
		bbox := tile.BBox
		numPoints := tile.NumPoints
		numSimplified := tile.NumSimplified

		for updID := range update {
			if _, ok := idIndex[updID]; ok {
				removeIDPositions(&features, idIndex, updID)
				touched = true
			}
			if purgeSourceID(&source, updID) {
				touched = true
			}
		}

		if len(newFeatures) > 0 {
			fz2 := float64(tile.Z2)
			fx, fy := float64(tile.X), float64(tile.Y)

			minX, maxX := featuresAxisExtent(newFeatures, 0)
			clippedX := Clip(newFeatures, (fx-p)/fz2, (fx+1+p)/fz2, 0, minX, maxX, lm)
			if len(clippedX) > 0 {
				minY, maxY := featuresAxisExtent(clippedX, 1)
				clippedXY := Clip(clippedX, (fy-p)/fz2, (fy+1+p)/fz2, 1, minY, maxY, lm)
				if len(clippedXY) > 0 {
					addedPoints, addedSimplified := insertInto(&features, idIndex, tile, clippedXY, &bbox)
					numPoints += addedPoints
					numSimplified += addedSimplified
					if tile.Source != nil {
						// Keep the retained source in sync so a later
						// drill-down from this tile sees the addition, the
						// counterpart of purgeSourceID on the remove side.
						source = append(source, clippedXY...)
					}
					touched = true
				}
			}
		}

		if !touched {
			continue
		}

		newTile := &Tile{
			Z:             tile.Z,
			X:             tile.X,
			Y:             tile.Y,
			Z2:            tile.Z2,
			Extent:        tile.Extent,
			Tolerance:     tile.Tolerance,
			SqTolerance:   tile.SqTolerance,
			LineMetrics:   tile.LineMetrics,
			Source:        source,
			Features:      features,
			BBox:          bbox,
			NumPoints:     numPoints,
			NumSimplified: numSimplified,
		}
		newTile.idIndex = idIndex
		idx.tiles[id] = newTile
	}
}

// purgeSourceID filters id out of *source in place, reporting whether
// anything was removed.
func purgeSourceID(source *[]*Feature, id interface{}) bool {
	changed := false
	out := (*source)[:0:0]
	for _, f := range *source {
		if f.ID == id {
			changed = true
			continue
		}
		out = append(out, f)
	}
	if changed {
		*source = out
	}
	return changed
}

// insertInto runs the materializer's per-feature transform-and-append
// logic against an existing tile's geometry parameters, appending into
// features/idIndex/bbox in place.
func insertInto(features *[]*MFeature, idIndex map[interface{}][]int, tile *Tile, add []*Feature, bbox *BBox) (addedPoints, addedSimplified int) {
	for _, f := range add {
		addedPoints += f.NumPoints

		mg, ok := transformGeometry(f.Geometry, tile.Z2, tile.X, tile.Y, tile.Extent, tile.Tolerance, tile.SqTolerance, &addedSimplified)
		if !ok {
			continue
		}

		props := f.Properties
		if tile.LineMetrics && f.Geometry.Type == GeomLineString && f.Geometry.Line.Dist > 0 {
			props = withClipMetrics(props, f.Geometry.Line)
		}

		mf := &MFeature{Geometry: mg, Properties: props, ID: f.ID}
		*features = append(*features, mf)
		if f.ID != nil {
			pos := len(*features) - 1
			idIndex[f.ID] = append(idIndex[f.ID], pos)
		}

		*bbox = bbox.Union(f.BBox)
	}
	return addedPoints, addedSimplified
}
