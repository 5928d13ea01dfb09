// Package api defines the Huma API routes and handlers for the tile engine.
package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/platgeo/geovt/internal/geoadapt"
	"github.com/platgeo/geovt/internal/service"
	"github.com/platgeo/geovt/internal/source"
	"github.com/platgeo/geovt/internal/vt"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Index    *service.IndexService
	Archiver *service.Archiver
	Source   *source.Service
	Tile     *service.TileService
}

// Types

type ListInput struct {
	Limit  int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Items per page"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
}

type TileInput struct {
	Z int `path:"z" doc:"Zoom level" example:"7"`
	X int `path:"x" doc:"Tile column" example:"37"`
	Y int `path:"y" doc:"Tile row" example:"48"`
}

type SourceNameInput struct {
	Name string `path:"name" doc:"Source file name" example:"us-states.geojson"`
}

type PageBody[T any] struct {
	Total  int `json:"total" doc:"Total number of items"`
	Offset int `json:"offset" doc:"Items skipped"`
	Limit  int `json:"limit" doc:"Items per page"`
	Data   []T `json:"data" doc:"Page of items"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type StatsBody struct {
	Total  int            `json:"total" doc:"Total number of materialized tiles"`
	ByZoom map[string]int `json:"byZoom" doc:"Materialized tile count per zoom level"`
	Ready  bool           `json:"ready" doc:"Whether an index has been built"`
	Source string         `json:"source" doc:"Name of the source the live index was built from"`
}

type BuildInput struct {
	Body struct {
		Source string `json:"source" required:"true" doc:"Source file name to build the index from" example:"us-states.geojson"`
	}
}

type UpdateInput struct {
	Body struct {
		Upsert geojson.FeatureCollection `json:"upsert,omitempty" doc:"Features to add or replace, each carrying an id"`
		Remove []interface{}             `json:"remove,omitempty" doc:"Feature ids to remove"`
	}
}

// APIHandler holds all REST API handlers. Its RegisterRoutes method
// registers them; internal/server calls it through the package-level
// RegisterRoutes below.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes wires Services into a fresh APIHandler and registers every
// route it serves against api. Kept as a package function so internal/server
// has a single call site and never constructs APIHandler itself.
func RegisterRoutes(api huma.API, svc *Services) {
	NewAPIHandler(svc).RegisterRoutes(api)
}

// RegisterRoutes registers every route this handler serves.
func (h *APIHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("sources"))
	huma.Get(api, "/api/v1/archives", h.GetArchives, huma.OperationTags("archives"))
	huma.Post(api, "/api/v1/archives", h.PublishArchive, huma.OperationTags("archives"))
	huma.Post(api, "/api/v1/sources/{name}/build", h.BuildFromSource, huma.OperationTags("sources"))
	huma.Post(api, "/api/v1/index/build", h.BuildFromBody, huma.OperationTags("index"))
	huma.Get(api, "/api/v1/tiles/{z}/{x}/{y}", h.GetTile, huma.OperationTags("tiles"))
	huma.Post(api, "/api/v1/tiles/update", h.UpdateTiles, huma.OperationTags("tiles"))
	huma.Get(api, "/api/v1/stats", h.GetStats, huma.OperationTags("stats"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetSources(ctx context.Context, input *ListInput) (*struct{ Body PageBody[source.File] }, error) {
	if h.svc == nil || h.svc.Source == nil {
		return &struct{ Body PageBody[source.File] }{}, nil
	}
	items, total, err := h.svc.Source.ListPaged(input.Offset, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list sources", err)
	}
	return &struct{ Body PageBody[source.File] }{Body: PageBody[source.File]{
		Total: total, Offset: input.Offset, Limit: input.Limit, Data: items,
	}}, nil
}

type PublishInput struct {
	Body struct {
		Name string `json:"name" required:"true" doc:"Output archive file name, .pmtiles appended if missing" example:"us-states"`
	}
}

// PublishArchive serializes the live in-memory index into a PMTiles v3
// archive under the tiles directory. Unlike tippecanoe-backed pipelines,
// this never shells out: the archive bytes come straight from tiles
// internal/vt already materialized.
func (h *APIHandler) PublishArchive(ctx context.Context, input *PublishInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Archiver == nil || h.svc.Tile == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	name := input.Body.Name
	if !strings.HasSuffix(name, ".pmtiles") {
		name += ".pmtiles"
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return nil, huma.Error400BadRequest("invalid archive name")
	}

	if err := os.MkdirAll(h.svc.Tile.TilesDir(), 0o755); err != nil {
		return nil, huma.Error500InternalServerError("failed to prepare tiles directory", err)
	}
	f, err := os.Create(filepath.Join(h.svc.Tile.TilesDir(), name))
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create archive", err)
	}
	defer f.Close()

	if err := h.svc.Archiver.WriteArchive(f); err != nil {
		return nil, huma.Error500InternalServerError("failed to write archive", err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "archive written: " + name}}, nil
}

// GetArchives lists the PMTiles archives an Archiver has already written to
// disk, independent of whatever source the live in-memory index currently
// holds.
func (h *APIHandler) GetArchives(ctx context.Context, input *ListInput) (*struct{ Body PageBody[service.TileFile] }, error) {
	if h.svc == nil || h.svc.Tile == nil {
		return &struct{ Body PageBody[service.TileFile] }{}, nil
	}
	items, total, err := h.svc.Tile.ListPaged(input.Offset, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list archives", err)
	}
	return &struct{ Body PageBody[service.TileFile] }{Body: PageBody[service.TileFile]{
		Total: total, Offset: input.Offset, Limit: input.Limit, Data: items,
	}}, nil
}

// BuildFromSource builds (or rebuilds) the live tile index from an
// already-uploaded source file, synchronously. Progress for long builds is
// streamed separately over SSE (see StreamHandler.BuildStream in
// stream.go, which calls the same IndexService.Build).
func (h *APIHandler) BuildFromSource(ctx context.Context, input *SourceNameInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Source == nil || h.svc.Index == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	fc, err := h.svc.Source.Load(input.Name)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	h.svc.Index.Build(input.Name, fc)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "index built from " + input.Name}}, nil
}

// BuildFromBody builds the live index from a feature collection posted
// directly in the request body, bypassing the sources directory.
func (h *APIHandler) BuildFromBody(ctx context.Context, input *struct {
	Body geojson.FeatureCollection
}) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Index == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	h.svc.Index.Build("inline", &input.Body)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "index built"}}, nil
}

// GetTile is geovt's one hot path: drill down to (z, x, y) and return the
// materialized tile as a GeoJSON feature collection in tile-local int16
// coordinates. A ZoomOutOfRange error from internal/vt maps to 400; "no
// data here" (the engine's empty-tile answer, not an error) maps to a 200
// with an empty feature collection, never a 404 — 404 would wrongly
// suggest the coordinate itself is invalid.
func (h *APIHandler) GetTile(ctx context.Context, input *TileInput) (*struct {
	Body geojson.FeatureCollection
}, error) {
	if h.svc == nil || h.svc.Index == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	if err := geoadapt.ValidateZXY(uint8(input.Z), input.X, input.Y); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	fc, ok, err := h.svc.Index.GetTile(uint8(input.Z), input.X, input.Y)
	if err != nil {
		if vtErr, isVT := err.(*vt.Error); isVT && vtErr.Kind == vt.ErrZoomOutOfRange {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return nil, huma.Error500InternalServerError("tile lookup failed", err)
	}
	if !ok {
		return &struct{ Body geojson.FeatureCollection }{Body: *geojson.NewFeatureCollection()}, nil
	}
	return &struct{ Body geojson.FeatureCollection }{Body: *fc}, nil
}

func (h *APIHandler) UpdateTiles(ctx context.Context, input *UpdateInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Index == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	if err := h.svc.Index.Update(&input.Body.Upsert, input.Body.Remove); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "index updated"}}, nil
}

func (h *APIHandler) GetStats(ctx context.Context, input *struct{}) (*struct{ Body StatsBody }, error) {
	if h.svc == nil || h.svc.Index == nil {
		return &struct{ Body StatsBody }{}, nil
	}
	byZoom, total := h.svc.Index.Stats()
	out := make(map[string]int, len(byZoom))
	for z, n := range byZoom {
		out[fmt.Sprintf("%d", z)] = n
	}
	return &struct{ Body StatsBody }{Body: StatsBody{
		Total: total, ByZoom: out, Ready: h.svc.Index.Ready(), Source: h.svc.Index.SourceName(),
	}}, nil
}
