// Package source manages uploaded GeoJSON/GeoParquet source files that the
// tile engine builds an index from.
package source

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// File describes an uploaded source file available to build an index from.
type File struct {
	Name     string `json:"name" doc:"File name"`
	Size     string `json:"size" doc:"Human-readable file size"`
	FileType string `json:"fileType" doc:"Detected source format" example:"GeoJSON"`
}

// Service lists, validates, saves, deletes, and loads source files.
type Service struct {
	dir string
	db  *sql.DB
}

// New creates a Service rooted at dataDir/sources. db may be nil; Load will
// then fail for .parquet/.geoparquet files (GeoJSON loads need no database).
func New(dataDir string, conn *sql.DB) *Service {
	return &Service{dir: filepath.Join(dataDir, "sources"), db: conn}
}

// Dir returns the path to the sources directory.
func (s *Service) Dir() string { return s.dir }

var extToType = map[string]string{
	".geojson":    "GeoJSON",
	".json":       "GeoJSON",
	".parquet":    "GeoParquet",
	".geoparquet": "GeoParquet",
}

// List returns all available source files.
func (s *Service) List() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []File{}, nil
		}
		return nil, err
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		fileType, ok := extToType[ext]
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, File{Name: entry.Name(), Size: formatSize(info.Size()), FileType: fileType})
	}
	return files, nil
}

// ListPaged returns a page of List(), along with the total count, for
// internal/api's PageBody[T] responses.
func (s *Service) ListPaged(offset, limit int) ([]File, int, error) {
	all, err := s.List()
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset >= total {
		return []File{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// ValidateFilename rejects path traversal and unsupported extensions.
func (s *Service) ValidateFilename(filename string) error {
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid filename")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := extToType[ext]; !ok {
		return fmt.Errorf("only .geojson, .json, .parquet, or .geoparquet files are allowed")
	}
	return nil
}

// Save writes content to filename inside the sources directory.
func (s *Service) Save(filename string, content io.Reader) error {
	if err := s.ValidateFilename(filename); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create sources directory: %w", err)
	}
	dest, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dest.Close()
	if _, err := io.Copy(dest, content); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Delete removes a source file.
func (s *Service) Delete(filename string) error {
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid filename")
	}
	path := filepath.Join(s.dir, filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", filename)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Load reads filename and returns its contents as a GeoJSON feature
// collection. .geojson/.json files are unmarshaled directly; .parquet and
// .geoparquet files are read through DuckDB's spatial+parquet extensions,
// converting geometry to GeoJSON with ST_AsGeoJSON.
func (s *Service) Load(filename string) (*geojson.FeatureCollection, error) {
	if err := s.ValidateFilename(filename); err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(s.dir, filename), s.db)
}

// LoadFile reads an arbitrary GeoJSON or GeoParquet path and returns its
// contents as a feature collection, independent of any sources directory
// convention. Service.Load and the build/bench CLI commands both use it.
func LoadFile(path string, conn *sql.DB) (*geojson.FeatureCollection, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return fc, nil

	case ".parquet", ".geoparquet":
		if conn == nil {
			return nil, fmt.Errorf("duckdb not available: cannot load %s", path)
		}
		return loadParquet(conn, path)

	default:
		return nil, fmt.Errorf("unsupported source file type: %s", ext)
	}
}

// loadParquet materializes a GeoParquet file into a GeoJSON feature
// collection via DuckDB's spatial extension, one row -> one feature.
func loadParquet(conn *sql.DB, path string) (*geojson.FeatureCollection, error) {
	query := fmt.Sprintf(
		"SELECT ST_AsGeoJSON(geom) AS geom_json, * EXCLUDE (geom) FROM read_parquet('%s')",
		strings.ReplaceAll(path, "'", "''"),
	)
	rows, err := conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("reading geoparquet %s: %w", path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			continue
		}

		var geomJSON []byte
		props := make(geojson.Properties, len(cols)-1)
		for i, col := range cols {
			if col == "geom_json" {
				if b, ok := values[i].([]byte); ok {
					geomJSON = b
				} else if str, ok := values[i].(string); ok {
					geomJSON = []byte(str)
				}
				continue
			}
			props[col] = values[i]
		}
		if geomJSON == nil {
			continue
		}
		geom, err := geojson.UnmarshalGeometry(geomJSON)
		if err != nil {
			continue
		}
		f := geojson.NewFeature(geom.Geometry())
		f.Properties = props
		fc.Append(f)
	}

	return fc, nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
