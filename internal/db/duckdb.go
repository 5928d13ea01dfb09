// Package db owns the single process-wide DuckDB connection (opened by the
// HTTP server or by the build/bench CLI commands):
// internal/source.LoadFile uses it (via its spatial extension's
// ST_AsGeoJSON) to read .parquet/.geoparquet source files into the
// GeoJSON internal/vt.New builds an index from, and internal/api's
// DuckDBHandler exposes it as a raw SQL console for inspecting GeoParquet
// files before a build.
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config names the on-disk DuckDB file Get opens: dataDir/duckdb/dbName.duckdb.
type Config struct {
	DataDir string
	DBName  string
}

// spatialExtensions are loaded eagerly so the first GeoParquet read through
// internal/source doesn't pay DuckDB's INSTALL latency mid-request.
var spatialExtensions = []string{"spatial", "parquet"}

// Get returns the process-wide DuckDB connection, opening it (and loading
// the spatial/parquet extensions GeoParquet ingestion needs) on first call.
// Subsequent calls, even with a different Config, return the same instance.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
		if initErr != nil {
			return
		}

		for _, ext := range spatialExtensions {
			if _, err := instance.Exec(fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
				log.Printf("db: failed to load DuckDB extension %q (GeoParquet reads may fail): %v", ext, err)
			}
		}
	})
	return instance, initErr
}

// Close closes the shared connection, called from Server.Close on shutdown.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}
