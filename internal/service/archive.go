package service

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/platgeo/geovt/internal/geoadapt"
	"github.com/platgeo/geovt/internal/pmtiles"
	"github.com/platgeo/geovt/internal/vt"
)

// Archiver serializes every tile an IndexService has materialized into a
// PMTiles v3 archive without shelling out to an external tiler: internal/vt
// already produced the simplified, clipped, tile-local geometry, so
// archiving is just "gzip each tile's GeoJSON and pack it behind a
// Hilbert-ordered directory".
type Archiver struct {
	svc *IndexService
}

// NewArchiver creates an Archiver over svc.
func NewArchiver(svc *IndexService) *Archiver {
	return &Archiver{svc: svc}
}

// WriteArchive walks every tile materialized in svc's live index (the
// pre-built pyramid down to index_max_zoom; deeper zooms reachable only via
// drill-down are not archived, since they do not exist until GetTile is
// called for them) and writes a PMTiles archive to w.
func (a *Archiver) WriteArchive(w io.Writer) error {
	idx := a.svc.Index()
	if idx == nil {
		return fmt.Errorf("no index built yet")
	}

	tiles := make(map[uint64][]byte)
	var minZoom, maxZoom uint8
	bbox := vt.BBox{MinX: 2, MinY: 1, MaxX: -1, MaxY: 0}
	first := true
	for _, tile := range idx.Tiles() {
		if len(tile.Features) == 0 {
			continue
		}
		payload, err := encodeTile(tile)
		if err != nil {
			return fmt.Errorf("encoding tile z=%d x=%d y=%d: %w", tile.Z, tile.X, tile.Y, err)
		}
		hid := pmtiles.ZxyToID(tile.Z, tile.X, tile.Y)
		tiles[hid] = payload
		if first || tile.Z < minZoom {
			minZoom = tile.Z
		}
		if first || tile.Z > maxZoom {
			maxZoom = tile.Z
		}
		first = false
		bbox = bbox.Union(tile.BBox)
	}

	var bounds [4]float64
	if !first {
		bounds[0], bounds[1], bounds[2], bounds[3] = geoadapt.UnprojectBBox(bbox)
	}

	meta := map[string]interface{}{
		"name":        a.svc.SourceName(),
		"format":      "geojson+gzip",
		"extent":      idx.Opts.Extent,
		"buffer":      idx.Opts.Buffer,
		"generator":   "geovt",
		"description": "GeoJSON vector tile pyramid; tiles are gzip-compressed GeoJSON, not MVT protobuf",
	}

	return pmtiles.WriteArchive(w, tiles, meta, minZoom, maxZoom, pmtiles.UnknownTileType, pmtiles.Gzip, bounds)
}

// encodeTile converts a materialized tile to GeoJSON and gzips it, the
// per-entry payload format WriteArchive expects.
func encodeTile(tile *vt.Tile) ([]byte, error) {
	fc := geoadapt.ToGeoJSON(tile)
	body, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(body); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
