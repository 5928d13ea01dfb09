package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/platgeo/geovt/internal/vt"
)

// InfoBody describes the running geovt instance: where it keeps its data,
// whether the DuckDB-backed GeoParquet path is usable, and the tiling
// parameters any index built through this server will use. Clients use the
// tiling fields to interpret tile responses — coordinates in a served tile
// span [-buffer, extent+buffer] — without hardcoding the defaults.
type InfoBody struct {
	Name         string `json:"name" doc:"Service name"`
	Version      string `json:"version" doc:"Service version"`
	DataDir      string `json:"data_dir" doc:"Directory holding sources, tile archives, and the DuckDB catalog"`
	DuckDB       bool   `json:"duckdb" doc:"Whether GeoParquet sources can be loaded"`
	MaxZoom      int    `json:"max_zoom" doc:"Deepest zoom tiles can be drilled to on request"`
	IndexMaxZoom int    `json:"index_max_zoom" doc:"Deepest zoom pre-materialized during an index build"`
	Extent       int    `json:"extent" doc:"Tile-local coordinate extent"`
	Buffer       int    `json:"buffer" doc:"Overlap buffer on each tile side, in tile pixels"`
}

// InfoHandler answers GET /api/v1/info. The root "/" banner lives in
// internal/server instead, so its ServeMux catch-all and Huma's router
// never claim the same pattern.
type InfoHandler struct {
	dataDir string
	duckDB  bool
	opts    vt.Options
}

// NewInfoHandler creates an InfoHandler. opts should be the same Options
// the server's IndexService was constructed with.
func NewInfoHandler(dataDir string, duckDB bool, opts vt.Options) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, duckDB: duckDB, opts: opts}
}

// RegisterRoutes registers the info route with Huma.
func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("info"))
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:         "geovt",
		Version:      "0.1.0",
		DataDir:      h.dataDir,
		DuckDB:       h.duckDB,
		MaxZoom:      h.opts.MaxZoom,
		IndexMaxZoom: h.opts.IndexMaxZoom,
		Extent:       h.opts.Extent,
		Buffer:       h.opts.Buffer,
	}}, nil
}
