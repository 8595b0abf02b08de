package Transformer

import (
	"fmt"
	"math"

	"github.com/GrainArc/SiteMeasure/methods"
	"github.com/GrainArc/SiteMeasure/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Layer names double as shapefile base names.
const (
	LayerPoints   = "points"
	LayerLines    = "lines"
	LayerPolygons = "polygons"
)

// LayerSet is the export partition of a feature snapshot, one collection per
// geometry kind.
type LayerSet struct {
	Points   *geojson.FeatureCollection `json:"points"`
	Lines    *geojson.FeatureCollection `json:"lines"`
	Polygons *geojson.FeatureCollection `json:"polygons"`
}

type Layer struct {
	Name       string
	Kind       models.GeometryKind
	Collection *geojson.FeatureCollection
}

// Layers lists the non-empty partitions in a fixed order.
func (s *LayerSet) Layers() []Layer {
	all := []Layer{
		{LayerPoints, models.KindPoint, s.Points},
		{LayerLines, models.KindPolyline, s.Lines},
		{LayerPolygons, models.KindPolygon, s.Polygons},
	}
	var out []Layer
	for _, l := range all {
		if l.Collection != nil && len(l.Collection.Features) > 0 {
			out = append(out, l)
		}
	}
	return out
}

func (s *LayerSet) Len() int {
	return len(s.Points.Features) + len(s.Lines.Features) + len(s.Polygons.Features)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ToGeoJSON converts one feature. Polygon rings gain their closing vertex here
// and nowhere else.
func ToGeoJSON(f models.Feature) *geojson.Feature {
	var g orb.Geometry
	length, area := 0.0, 0.0
	switch f.Kind {
	case models.KindPoint:
		g = f.Vertices[0]
	case models.KindPolyline:
		g = orb.LineString(append([]orb.Point(nil), f.Vertices...))
		length = methods.Perimeter(f.Vertices, false)
	case models.KindPolygon:
		ring := append(orb.Ring(nil), f.Vertices...)
		ring = append(ring, f.Vertices[0])
		g = orb.Polygon{ring}
		length = methods.Perimeter(f.Vertices, true)
		area = methods.SquareMetresToHectares(methods.RingArea(f.Vertices))
	}
	out := geojson.NewFeature(g)
	out.ID = f.ID
	out.Properties["id"] = f.ID
	out.Properties["kind"] = string(f.Kind)
	out.Properties["length_m"] = round(length, 1)
	out.Properties["area_ha"] = round(area, 2)
	return out
}

// Partition splits a snapshot into the three export collections.
func Partition(features []models.Feature) *LayerSet {
	set := &LayerSet{
		Points:   geojson.NewFeatureCollection(),
		Lines:    geojson.NewFeatureCollection(),
		Polygons: geojson.NewFeatureCollection(),
	}
	for _, f := range features {
		if len(f.Vertices) == 0 {
			continue
		}
		gf := ToGeoJSON(f)
		switch f.Kind {
		case models.KindPoint:
			set.Points.Append(gf)
		case models.KindPolyline:
			set.Lines.Append(gf)
		case models.KindPolygon:
			set.Polygons.Append(gf)
		}
	}
	return set
}

// FromGeoJSON turns an imported feature back into store features. Multi
// geometries split into one feature per part; polygon holes are dropped.
func FromGeoJSON(f *geojson.Feature) ([]models.Feature, error) {
	id, _ := f.Properties["id"].(string)
	switch g := f.Geometry.(type) {
	case orb.Point:
		return []models.Feature{{ID: id, Kind: models.KindPoint, Vertices: []orb.Point{g}}}, nil
	case orb.MultiPoint:
		out := make([]models.Feature, 0, len(g))
		for _, p := range g {
			out = append(out, models.Feature{Kind: models.KindPoint, Vertices: []orb.Point{p}})
		}
		return out, nil
	case orb.LineString:
		return []models.Feature{{ID: id, Kind: models.KindPolyline, Vertices: append([]orb.Point(nil), g...)}}, nil
	case orb.MultiLineString:
		out := make([]models.Feature, 0, len(g))
		for _, ls := range g {
			out = append(out, models.Feature{Kind: models.KindPolyline, Vertices: append([]orb.Point(nil), ls...)})
		}
		return out, nil
	case orb.Polygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("%w: empty polygon", models.ErrInvalidGeometry)
		}
		return []models.Feature{polygonFeature(id, g[0])}, nil
	case orb.MultiPolygon:
		out := make([]models.Feature, 0, len(g))
		for _, p := range g {
			if len(p) > 0 {
				out = append(out, polygonFeature("", p[0]))
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unsupported geometry %T", models.ErrInvalidGeometry, f.Geometry)
}

func polygonFeature(id string, ring orb.Ring) models.Feature {
	pts := methods.StripClosingVertex(append([]orb.Point(nil), ring...))
	return models.Feature{ID: id, Kind: models.KindPolygon, Vertices: pts, Closed: true}
}

// FeaturesFromCollection flattens a collection into store features.
func FeaturesFromCollection(fc *geojson.FeatureCollection) ([]models.Feature, error) {
	var out []models.Feature
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		part, err := FromGeoJSON(f)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}
