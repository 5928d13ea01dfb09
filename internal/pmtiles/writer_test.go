package pmtiles

import (
	"bytes"
	"math"
	"testing"
)

func TestWriteArchiveRoundTrip(t *testing.T) {
	tiles := map[uint64][]byte{
		ZxyToID(1, 0, 0): []byte("tile-0-0"),
		ZxyToID(1, 1, 1): []byte("tile-1-1"),
	}
	meta := map[string]interface{}{"format": "geojson+gzip", "name": "test"}

	bounds := [4]float64{-122.5, 37.7, -122.3, 37.9}
	var buf bytes.Buffer
	if err := WriteArchive(&buf, tiles, meta, 1, 1, UnknownTileType, Gzip, bounds); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	header, err := DeserializeHeader(buf.Bytes()[:HeaderV3LenBytes])
	if err != nil {
		t.Fatalf("DeserializeHeader: %v", err)
	}
	if header.TileEntriesCount != 2 {
		t.Fatalf("got %d entries, want 2", header.TileEntriesCount)
	}
	if header.MinZoom != 1 || header.MaxZoom != 1 {
		t.Fatalf("got zoom range [%d,%d], want [1,1]", header.MinZoom, header.MaxZoom)
	}
	if !header.Clustered {
		t.Fatal("archive not marked clustered")
	}
	const epsilon = 1e-6
	if gotLon := E7ToDeg(header.MinLonE7); math.Abs(gotLon-bounds[0]) > epsilon {
		t.Fatalf("got MinLonE7 -> %f, want %f", gotLon, bounds[0])
	}
	if gotLat := E7ToDeg(header.MaxLatE7); math.Abs(gotLat-bounds[3]) > epsilon {
		t.Fatalf("got MaxLatE7 -> %f, want %f", gotLat, bounds[3])
	}

	gotTileData := buf.Bytes()[header.TileDataOffset : header.TileDataOffset+header.TileDataLength]
	if !bytes.Contains(gotTileData, []byte("tile-0-0")) || !bytes.Contains(gotTileData, []byte("tile-1-1")) {
		t.Fatalf("tile data section missing expected payloads: %q", gotTileData)
	}
}

func TestWriteArchiveEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteArchive(&buf, map[uint64][]byte{}, map[string]interface{}{}, 0, 0, UnknownTileType, Gzip, [4]float64{}); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	header, err := DeserializeHeader(buf.Bytes()[:HeaderV3LenBytes])
	if err != nil {
		t.Fatalf("DeserializeHeader: %v", err)
	}
	if header.TileEntriesCount != 0 {
		t.Fatalf("got %d entries, want 0", header.TileEntriesCount)
	}
}
