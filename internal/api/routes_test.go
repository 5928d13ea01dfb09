package api

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/platgeo/geovt/internal/pmtiles"
	"github.com/platgeo/geovt/internal/service"
	"github.com/platgeo/geovt/internal/source"
	"github.com/platgeo/geovt/internal/vt"
)

func newTestServices(t *testing.T) *Services {
	t.Helper()
	dataDir := t.TempDir()
	idxSvc := service.NewIndexService(vt.DefaultOptions())
	return &Services{
		Index:    idxSvc,
		Archiver: service.NewArchiver(idxSvc),
		Source:   source.New(dataDir, nil),
		Tile:     service.NewTileService(dataDir),
	}
}

func pointFC(lon, lat float64, id string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{lon, lat})
	f.ID = id
	fc.Append(f)
	return fc
}

func TestGetHealth(t *testing.T) {
	h := NewAPIHandler(newTestServices(t))
	resp, err := h.GetHealth(context.Background(), &struct{}{})
	if err != nil {
		t.Fatalf("GetHealth: %v", err)
	}
	if resp.Body.Status != "ok" {
		t.Fatalf("got status %q, want ok", resp.Body.Status)
	}
}

func TestBuildFromBodyThenGetTile(t *testing.T) {
	h := NewAPIHandler(newTestServices(t))

	buildResp, err := h.BuildFromBody(context.Background(), &struct {
		Body geojson.FeatureCollection
	}{Body: *pointFC(-122.4, 37.8, "a")})
	if err != nil {
		t.Fatalf("BuildFromBody: %v", err)
	}
	if buildResp.Body.Message == "" {
		t.Fatal("BuildFromBody returned an empty message")
	}

	tileResp, err := h.GetTile(context.Background(), &TileInput{Z: 0, X: 0, Y: 0})
	if err != nil {
		t.Fatalf("GetTile: %v", err)
	}
	if len(tileResp.Body.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(tileResp.Body.Features))
	}
}

func TestGetTileRejectsBadZXY(t *testing.T) {
	h := NewAPIHandler(newTestServices(t))
	if _, err := h.GetTile(context.Background(), &TileInput{Z: 99, X: 0, Y: 0}); err == nil {
		t.Fatal("GetTile with out-of-range zoom did not error")
	}
}

func TestGetStatsBeforeBuild(t *testing.T) {
	h := NewAPIHandler(newTestServices(t))
	resp, err := h.GetStats(context.Background(), &struct{}{})
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if resp.Body.Ready {
		t.Fatal("Ready true before any Build")
	}
}

func TestUpdateTilesRemovesFeature(t *testing.T) {
	svc := newTestServices(t)
	h := NewAPIHandler(svc)
	svc.Index.Build("points.geojson", pointFC(-122.4, 37.8, "a"))

	_, err := h.UpdateTiles(context.Background(), &UpdateInput{Body: struct {
		Upsert geojson.FeatureCollection `json:"upsert,omitempty" doc:"Features to add or replace, each carrying an id"`
		Remove []interface{}             `json:"remove,omitempty" doc:"Feature ids to remove"`
	}{
		Upsert: *geojson.NewFeatureCollection(),
		Remove: []interface{}{"a"},
	}})
	if err != nil {
		t.Fatalf("UpdateTiles: %v", err)
	}

	tileResp, err := h.GetTile(context.Background(), &TileInput{Z: 0, X: 0, Y: 0})
	if err != nil {
		t.Fatalf("GetTile: %v", err)
	}
	if len(tileResp.Body.Features) != 0 {
		t.Fatalf("got %d features after removal, want 0", len(tileResp.Body.Features))
	}
}

func TestGetSourcesEmpty(t *testing.T) {
	h := NewAPIHandler(newTestServices(t))
	resp, err := h.GetSources(context.Background(), &ListInput{Limit: 20, Offset: 0})
	if err != nil {
		t.Fatalf("GetSources: %v", err)
	}
	if resp.Body.Total != 0 || len(resp.Body.Data) != 0 {
		t.Fatalf("got %+v, want an empty page", resp.Body)
	}
}

func TestBuildFromSourceLoadsUploadedFile(t *testing.T) {
	svc := newTestServices(t)
	h := NewAPIHandler(svc)
	body := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.4,37.8]},"properties":{}}]}`
	if err := svc.Source.Save("us-states.geojson", strings.NewReader(body)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := h.BuildFromSource(context.Background(), &SourceNameInput{Name: "us-states.geojson"}); err != nil {
		t.Fatalf("BuildFromSource: %v", err)
	}
	if !svc.Index.Ready() {
		t.Fatal("index not ready after BuildFromSource")
	}
}

func TestBuildFromSourceMissingFile(t *testing.T) {
	h := NewAPIHandler(newTestServices(t))
	if _, err := h.BuildFromSource(context.Background(), &SourceNameInput{Name: "missing.geojson"}); err == nil {
		t.Fatal("BuildFromSource with a missing file did not error")
	}
}

func TestPublishArchiveThenListArchives(t *testing.T) {
	svc := newTestServices(t)
	h := NewAPIHandler(svc)
	svc.Index.Build("points.geojson", pointFC(-122.4, 37.8, "a"))

	resp, err := h.PublishArchive(context.Background(), &PublishInput{Body: struct {
		Name string `json:"name" required:"true" doc:"Output archive file name, .pmtiles appended if missing" example:"us-states"`
	}{Name: "us-states"}})
	if err != nil {
		t.Fatalf("PublishArchive: %v", err)
	}
	if resp.Body.Message == "" {
		t.Fatal("PublishArchive returned an empty message")
	}

	page, err := h.GetArchives(context.Background(), &ListInput{Limit: 20, Offset: 0})
	if err != nil {
		t.Fatalf("GetArchives: %v", err)
	}
	if page.Body.Total != 1 || page.Body.Data[0].Name != "us-states.pmtiles" {
		t.Fatalf("got %+v, want one archive named us-states.pmtiles", page.Body)
	}
}

func TestPublishArchiveRejectsPathTraversal(t *testing.T) {
	h := NewAPIHandler(newTestServices(t))
	if _, err := h.PublishArchive(context.Background(), &PublishInput{Body: struct {
		Name string `json:"name" required:"true" doc:"Output archive file name, .pmtiles appended if missing" example:"us-states"`
	}{Name: "../evil"}}); err == nil {
		t.Fatal("PublishArchive with a path-traversal name did not error")
	}
}

func TestPublishArchiveWithoutBuiltIndex(t *testing.T) {
	h := NewAPIHandler(newTestServices(t))
	if _, err := h.PublishArchive(context.Background(), &PublishInput{Body: struct {
		Name string `json:"name" required:"true" doc:"Output archive file name, .pmtiles appended if missing" example:"us-states"`
	}{Name: "empty"}}); err == nil {
		t.Fatal("PublishArchive with no built index did not error")
	}
}

// sanity-check that the tile data PublishArchive writes is a well-formed
// PMTiles archive, not just a non-empty file.
func TestPublishArchiveWritesValidHeader(t *testing.T) {
	svc := newTestServices(t)
	h := NewAPIHandler(svc)
	svc.Index.Build("points.geojson", pointFC(-122.4, 37.8, "a"))

	if _, err := h.PublishArchive(context.Background(), &PublishInput{Body: struct {
		Name string `json:"name" required:"true" doc:"Output archive file name, .pmtiles appended if missing" example:"us-states"`
	}{Name: "us-states.pmtiles"}}); err != nil {
		t.Fatalf("PublishArchive: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.Archiver.WriteArchive(&buf); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	if _, err := pmtiles.DeserializeHeader(buf.Bytes()[:pmtiles.HeaderV3LenBytes]); err != nil {
		t.Fatalf("DeserializeHeader: %v", err)
	}
}
