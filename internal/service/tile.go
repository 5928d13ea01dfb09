package service

import (
	"fmt"
	"os"
	"path/filepath"
)

// TileFile describes a PMTiles archive written by an Archiver.
type TileFile struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// TileService lists PMTiles archives previously written to a tiles
// directory, the read side of internal/pmtiles.WriteArchive.
type TileService struct {
	tilesDir string
}

// NewTileService creates a new tile service rooted at dataDir/tiles.
func NewTileService(dataDir string) *TileService {
	return &TileService{
		tilesDir: filepath.Join(dataDir, "tiles"),
	}
}

// List returns all available PMTiles archives.
func (s *TileService) List() ([]TileFile, error) {
	entries, err := os.ReadDir(s.tilesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TileFile{}, nil
		}
		return nil, err
	}

	var files []TileFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pmtiles" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, TileFile{
			Name: entry.Name(),
			Size: formatSize(info.Size()),
		})
	}

	return files, nil
}

// ListPaged returns a page of available PMTiles archives, matching
// internal/source.Service.ListPaged so both can back the same kind of
// PageBody response.
func (s *TileService) ListPaged(offset, limit int) ([]TileFile, int, error) {
	all, err := s.List()
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset >= total {
		return []TileFile{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// TilesDir returns the path to the tiles directory.
func (s *TileService) TilesDir() string {
	return s.tilesDir
}

// formatSize returns a human-readable file size.
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
