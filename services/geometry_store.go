package services

import (
	"fmt"
	"strings"

	"github.com/GrainArc/SiteMeasure/methods"
	"github.com/GrainArc/SiteMeasure/models"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// GeometryStore owns the drawn features in insertion order. It is not safe for
// concurrent use; the Workspace serializes access.
type GeometryStore struct {
	features []models.Feature
	index    map[string]int
	hooks    []func()
}

func NewGeometryStore() *GeometryStore {
	return &GeometryStore{index: make(map[string]int)}
}

// OnChange registers a hook run synchronously after every successful mutation.
func (s *GeometryStore) OnChange(fn func()) {
	s.hooks = append(s.hooks, fn)
}

func (s *GeometryStore) changed() {
	for _, fn := range s.hooks {
		fn()
	}
}

// NormalizeFeature validates vertices for kind and returns the stored form:
// polygon rings lose a duplicated closing vertex and are marked Closed.
func NormalizeFeature(id string, kind models.GeometryKind, vertices []orb.Point) (models.Feature, error) {
	if !kind.Valid() {
		return models.Feature{}, fmt.Errorf("%w: unknown kind %q", models.ErrInvalidGeometry, kind)
	}
	if !methods.Finite(vertices) {
		return models.Feature{}, fmt.Errorf("%w: non-finite coordinate", models.ErrInvalidGeometry)
	}
	if kind == models.KindPoint {
		if len(vertices) != 1 {
			return models.Feature{}, fmt.Errorf("%w: point needs exactly 1 vertex, got %d", models.ErrInvalidGeometry, len(vertices))
		}
	}
	// repeated vertices would give zero-length segments
	pts := methods.DropRepeats(vertices)
	if kind == models.KindPolygon {
		pts = methods.StripClosingVertex(pts)
	}
	if distinct(pts) < kind.MinVertices() {
		return models.Feature{}, fmt.Errorf("%w: %s needs %d distinct vertices", models.ErrInvalidGeometry, strings.ToLower(string(kind)), kind.MinVertices())
	}
	if id == "" {
		id = uuid.NewString()
	}
	return models.Feature{ID: id, Kind: kind, Vertices: pts, Closed: kind == models.KindPolygon}, nil
}

func distinct(pts []orb.Point) int {
	seen := make(map[orb.Point]struct{}, len(pts))
	for _, p := range pts {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// Add stores a normalized copy of f and returns it.
func (s *GeometryStore) Add(f models.Feature) (models.Feature, error) {
	nf, err := NormalizeFeature(f.ID, f.Kind, f.Vertices)
	if err != nil {
		return models.Feature{}, err
	}
	if _, ok := s.index[nf.ID]; ok {
		return models.Feature{}, fmt.Errorf("%w: duplicate id %s", models.ErrInvalidGeometry, nf.ID)
	}
	s.index[nf.ID] = len(s.features)
	s.features = append(s.features, nf)
	s.changed()
	return nf.Clone(), nil
}

// Update replaces the vertices of an existing feature.
func (s *GeometryStore) Update(id string, vertices []orb.Point) (models.Feature, error) {
	i, ok := s.index[id]
	if !ok {
		return models.Feature{}, fmt.Errorf("update %s: %w", id, models.ErrNotFound)
	}
	nf, err := NormalizeFeature(id, s.features[i].Kind, vertices)
	if err != nil {
		return models.Feature{}, err
	}
	s.features[i] = nf
	s.changed()
	return nf.Clone(), nil
}

func (s *GeometryStore) Remove(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, models.ErrNotFound)
	}
	s.features = append(s.features[:i], s.features[i+1:]...)
	s.reindex()
	s.changed()
	return nil
}

func (s *GeometryStore) RemoveAll() {
	s.features = nil
	s.index = make(map[string]int)
	s.changed()
}

// Replace swaps the whole feature set in one mutation. Nothing changes if any
// feature is invalid.
func (s *GeometryStore) Replace(features []models.Feature) error {
	out := make([]models.Feature, 0, len(features))
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		nf, err := NormalizeFeature(f.ID, f.Kind, f.Vertices)
		if err != nil {
			return err
		}
		if _, dup := seen[nf.ID]; dup {
			nf.ID = uuid.NewString()
		}
		seen[nf.ID] = struct{}{}
		out = append(out, nf)
	}
	s.features = out
	s.reindex()
	s.changed()
	return nil
}

func (s *GeometryStore) reindex() {
	s.index = make(map[string]int, len(s.features))
	for i, f := range s.features {
		s.index[f.ID] = i
	}
}

// Features returns deep copies in insertion order.
func (s *GeometryStore) Features() []models.Feature {
	out := make([]models.Feature, len(s.features))
	for i, f := range s.features {
		out[i] = f.Clone()
	}
	return out
}

func (s *GeometryStore) Get(id string) (models.Feature, error) {
	i, ok := s.index[id]
	if !ok {
		return models.Feature{}, fmt.Errorf("get %s: %w", id, models.ErrNotFound)
	}
	return s.features[i].Clone(), nil
}

func (s *GeometryStore) Len() int {
	return len(s.features)
}
