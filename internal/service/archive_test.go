package service

import (
	"bytes"
	"testing"

	"github.com/platgeo/geovt/internal/pmtiles"
	"github.com/platgeo/geovt/internal/vt"
)

func TestArchiverWriteArchive(t *testing.T) {
	idxSvc := NewIndexService(vt.DefaultOptions())
	idxSvc.Build("points.geojson", pointFC(-122.4, 37.8, "a"))

	var buf bytes.Buffer
	if err := NewArchiver(idxSvc).WriteArchive(&buf); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("WriteArchive wrote nothing")
	}

	header, err := pmtiles.DeserializeHeader(buf.Bytes()[:127])
	if err != nil {
		t.Fatalf("DeserializeHeader: %v", err)
	}
	if header.TileEntriesCount == 0 {
		t.Fatal("archive has zero tile entries")
	}
}

func TestArchiverNoIndexBuilt(t *testing.T) {
	idxSvc := NewIndexService(vt.DefaultOptions())
	var buf bytes.Buffer
	if err := NewArchiver(idxSvc).WriteArchive(&buf); err == nil {
		t.Fatal("WriteArchive with no built index did not error")
	}
}
