package service

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/platgeo/geovt/internal/geoadapt"
	"github.com/platgeo/geovt/internal/vt"
)

// IndexService owns a live internal/vt.Index behind a mutex, giving the HTTP
// layer (internal/api) a concurrency-safe facade over the otherwise
// single-threaded engine: internal/vt never spawns background work or locks
// anything itself, but nothing stops two HTTP requests from calling GetTile
// on the same *http.Server goroutine pool simultaneously.
type IndexService struct {
	mu   sync.RWMutex
	idx  *vt.Index
	opts vt.Options
	name string
}

// NewIndexService creates an empty service; call Build before any GetTile.
func NewIndexService(opts vt.Options) *IndexService {
	return &IndexService{opts: opts}
}

// Build replaces the live index with a freshly constructed one over fc.
// name identifies the source this index was built from (surfaced by Stats).
func (s *IndexService) Build(name string, fc *geojson.FeatureCollection) {
	features := geoadapt.FromGeoJSON(fc)
	idx := vt.New(features, s.opts)

	s.mu.Lock()
	s.idx = idx
	s.name = name
	s.mu.Unlock()

	DefaultBus.Publish(IndexEvent{Kind: IndexBuilt, Source: name, Total: idx.Total()})
}

// Ready reports whether an index has been built yet.
func (s *IndexService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx != nil
}

// SourceName returns the name passed to the most recent Build call.
func (s *IndexService) SourceName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// GetTile drills down to (z, x, y) and returns its materialized tile as
// GeoJSON, ready for the HTTP handler to serve as JSON. The bool result
// is false for "no data here", which is not an error.
func (s *IndexService) GetTile(z uint8, x, y int) (*geojson.FeatureCollection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx == nil {
		return nil, false, fmt.Errorf("no index built yet")
	}
	tile, err := s.idx.GetTile(z, x, y)
	if err != nil {
		return nil, false, err
	}
	if len(tile.Features) == 0 {
		return nil, false, nil
	}
	return geoadapt.ToGeoJSON(tile), true, nil
}

// Update applies an incremental feature add/remove to the live index.
// Every id in remove is deleted from all materialized tiles; every feature
// in upsert that carries an id is inserted into the tiles its bbox
// touches.
func (s *IndexService) Update(upsert *geojson.FeatureCollection, remove []interface{}) error {
	s.mu.Lock()
	if s.idx == nil {
		s.mu.Unlock()
		return fmt.Errorf("no index built yet")
	}

	update := make(map[interface{}][]*vt.RawFeature, len(remove)+len(upsert.Features))
	for _, id := range remove {
		update[id] = append(update[id], nil)
	}
	for _, rf := range geoadapt.FromGeoJSON(upsert) {
		rf := rf
		if rf.ID == nil {
			continue
		}
		update[rf.ID] = append(update[rf.ID], &rf)
	}

	s.idx.UpdateFeatures(update)
	name := s.name
	total := s.idx.Total()
	s.mu.Unlock()

	DefaultBus.Publish(IndexEvent{Kind: IndexUpdated, Source: name, Total: total})
	return nil
}

// Stats returns the zoom -> tile-count histogram and the running total.
func (s *IndexService) Stats() (map[uint8]int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return map[uint8]int{}, 0
	}
	return s.idx.Stats(), s.idx.Total()
}

// Index returns the underlying engine index for callers (e.g. Archiver)
// that need direct access to the tile map. Callers must not mutate it.
func (s *IndexService) Index() *vt.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}
