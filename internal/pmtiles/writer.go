package pmtiles

import (
	"bytes"
	"io"
	"sort"
)

// WriteArchive serializes tiles into a single PMTiles v3 archive written to
// w. tiles maps a Hilbert tile id (ZxyToID) to the tile's raw (already
// compressed, if any) payload bytes. metadata is arbitrary archive-level
// JSON (layer names, attribution, the tile content format) serialized into
// the metadata section.
//
// This writer always produces a single root directory with no leaf
// directories: acceptable for archives with up to a few hundred thousand
// tile entries, which covers the index sizes internal/service.Archiver
// builds from a single index_max_zoom pyramid. go-pmtiles itself falls back
// to leaf directories only once the root directory would otherwise exceed
// ~16KB compressed; production archives spanning the full pyramid to a high
// max_zoom should page through leaf directories instead.
//
// bounds is the archive's geographic extent in WGS84 degrees
// (minLon, minLat, maxLon, maxLat), used to fill in the header's
// MinLonE7..MaxLatE7 and center fields — see internal/geoadapt.UnprojectBBox,
// which derives this from the index's own tile bboxes.
func WriteArchive(w io.Writer, tiles map[uint64][]byte, metadata map[string]interface{}, minZoom, maxZoom uint8, tileType TileType, tileCompression Compression, bounds [4]float64) error {
	ids := make([]uint64, 0, len(tiles))
	for id := range tiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var tileData bytes.Buffer
	entries := make([]EntryV3, 0, len(ids))
	for _, id := range ids {
		data := tiles[id]
		offset := uint64(tileData.Len())
		tileData.Write(data)
		entries = append(entries, EntryV3{
			TileID:    id,
			Offset:    offset,
			Length:    uint32(len(data)),
			RunLength: 1,
		})
	}

	metaBytes, err := SerializeMetadata(metadata, Gzip)
	if err != nil {
		return err
	}
	dirBytes := SerializeEntries(entries, Gzip)

	header := HeaderV3{
		SpecVersion:         3,
		RootOffset:          HeaderV3LenBytes,
		RootLength:          uint64(len(dirBytes)),
		MetadataOffset:      HeaderV3LenBytes + uint64(len(dirBytes)),
		MetadataLength:      uint64(len(metaBytes)),
		LeafDirectoryOffset: 0,
		LeafDirectoryLength: 0,
		Clustered:           true,
		InternalCompression: Gzip,
		TileCompression:     tileCompression,
		TileType:            tileType,
		MinZoom:             minZoom,
		MaxZoom:             maxZoom,
		MinLonE7:            DegToE7(bounds[0]),
		MinLatE7:            DegToE7(bounds[1]),
		MaxLonE7:            DegToE7(bounds[2]),
		MaxLatE7:            DegToE7(bounds[3]),
		CenterZoom:          minZoom,
		CenterLonE7:         DegToE7((bounds[0] + bounds[2]) / 2),
		CenterLatE7:         DegToE7((bounds[1] + bounds[3]) / 2),
	}
	header.TileDataOffset = header.MetadataOffset + header.MetadataLength
	header.TileDataLength = uint64(tileData.Len())
	header.AddressedTilesCount = uint64(len(entries))
	header.TileEntriesCount = uint64(len(entries))
	header.TileContentsCount = uint64(len(entries))

	if _, err := w.Write(SerializeHeader(header)); err != nil {
		return err
	}
	if _, err := w.Write(dirBytes); err != nil {
		return err
	}
	if _, err := w.Write(metaBytes); err != nil {
		return err
	}
	if _, err := w.Write(tileData.Bytes()); err != nil {
		return err
	}
	return nil
}
