package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/platgeo/geovt/internal/api"
	"github.com/platgeo/geovt/internal/db"
	"github.com/platgeo/geovt/internal/service"
	"github.com/platgeo/geovt/internal/source"
	"github.com/platgeo/geovt/internal/vt"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
}

// Server is the geovt HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	tileOpts vt.Options
}

// New creates a new geovt server: a Huma-documented REST API over
// internal/vt's tile index, plus raw DuckDB query endpoints and static
// PMTiles serving.
func New(cfg Config) *Server {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("geovt API", "1.0.0")
	humaConfig.Info.Description = "GeoJSON vector tile pyramid engine: build a geojson-vt-style tile index from GeoJSON or GeoParquet sources, drill down into materialized tiles on demand, and package the result as a PMTiles archive."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	conn, dbErr := db.Get(db.Config{
		DataDir: cfg.DataDir,
		DBName:  "geovt",
	})

	os.MkdirAll(filepath.Join(cfg.DataDir, "sources"), 0o755)

	tileOpts := vt.DefaultOptions()
	indexSvc := service.NewIndexService(tileOpts)
	services := &api.Services{
		Index:    indexSvc,
		Archiver: service.NewArchiver(indexSvc),
		Source:   source.New(cfg.DataDir, conn),
		Tile:     service.NewTileService(cfg.DataDir),
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		services: services,
		tileOpts: tileOpts,
	}
	if dbErr == nil {
		s.db = conn
	}

	s.routes()
	s.watchIndexEvents()
	return s
}

// watchIndexEvents logs index build/update events published on the shared
// event bus.
func (s *Server) watchIndexEvents() {
	ch := service.DefaultBus.Subscribe()
	go func() {
		for ev := range ch {
			fmt.Printf("[index] %s %s (%d tiles)\n", ev.Kind, ev.Source, ev.Total)
		}
	}()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the server's generated OpenAPI document, used by the
// `geovt spec` CLI subcommand to export it without starting a listener.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

func (s *Server) routes() {
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewStreamHandler(s.services).RegisterRoutes(s.humaAPI)
	api.NewInfoHandler(s.config.DataDir, s.db != nil, s.tileOpts).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	tilesDir := filepath.Join(s.config.DataDir, "tiles")
	s.mux.Handle("/tiles/", http.StripPrefix("/tiles/", s.handleTiles(tilesDir)))

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "geovt",
		"status":  "running",
		"docs":    "/docs",
	})
}

// handleTiles serves PMTiles archives written by Archiver.WriteArchive as
// static, range-request-friendly files — PMTiles readers (pmtiles.io,
// MapLibre's pmtiles protocol) fetch byte ranges directly from this path.
func (s *Server) handleTiles(tilesDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if strings.Contains(r.URL.Path, "..") {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}

		http.FileServer(http.Dir(tilesDir)).ServeHTTP(w, r)
	})
}
