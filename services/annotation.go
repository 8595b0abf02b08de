package services

import (
	"fmt"

	"github.com/GrainArc/SiteMeasure/methods"
	"github.com/GrainArc/SiteMeasure/models"
	"github.com/paulmach/orb"
)

// AnnotationManager holds the overlay derived from the store. Every Rebuild
// clears all labels and rows before regenerating them.
type AnnotationManager struct {
	labels   []models.Label
	preview  []models.Label
	sections []models.TableSection
}

func NewAnnotationManager() *AnnotationManager {
	return &AnnotationManager{}
}

func (m *AnnotationManager) Rebuild(features []models.Feature) {
	m.labels = nil
	m.sections = nil
	for _, f := range features {
		labels, section := annotateFeature(f)
		m.labels = append(m.labels, labels...)
		if section != nil {
			m.sections = append(m.sections, *section)
		}
	}
}

// SetPreview replaces the transient overlay of the feature being drawn.
func (m *AnnotationManager) SetPreview(kind models.GeometryKind, vertices []orb.Point) {
	m.preview = nil
	if len(vertices) == 0 {
		return
	}
	pts := vertices
	if kind == models.KindPolygon {
		pts = methods.StripClosingVertex(pts)
	}
	labels, _ := annotateFeature(models.Feature{Kind: kind, Vertices: pts, Closed: kind == models.KindPolygon && len(pts) > 2})
	m.preview = labels
}

func (m *AnnotationManager) ClearPreview() {
	m.preview = nil
}

func (m *AnnotationManager) Labels() []models.Label {
	return append([]models.Label(nil), m.labels...)
}

func (m *AnnotationManager) Preview() []models.Label {
	return append([]models.Label(nil), m.preview...)
}

// Table returns one section per feature that has measurements.
func (m *AnnotationManager) Table() []models.TableSection {
	out := make([]models.TableSection, len(m.sections))
	for i, s := range m.sections {
		s.Rows = append([]models.MeasurementRow(nil), s.Rows...)
		out[i] = s
	}
	return out
}

// Rows flattens the table.
func (m *AnnotationManager) Rows() []models.MeasurementRow {
	var out []models.MeasurementRow
	for _, s := range m.sections {
		out = append(out, s.Rows...)
	}
	return out
}

// BuildTable derives the measurement table straight from a feature snapshot.
func BuildTable(features []models.Feature) []models.TableSection {
	m := NewAnnotationManager()
	m.Rebuild(features)
	return m.sections
}

func annotateFeature(f models.Feature) ([]models.Label, *models.TableSection) {
	pts := f.Vertices
	if f.Closed {
		pts = methods.StripClosingVertex(pts)
	}
	g := models.Feature{ID: f.ID, Kind: f.Kind, Vertices: pts, Closed: f.Closed}

	labels := make([]models.Label, 0, 2*len(pts))
	for i, p := range pts {
		labels = append(labels, models.Label{FeatureID: f.ID, Kind: models.LabelPoint, Position: p, Text: methods.PointName(i)})
	}

	segs := g.Segments()
	if len(segs) == 0 {
		return labels, nil
	}
	section := &models.TableSection{FeatureID: f.ID, Kind: f.Kind, Header: models.SectionHeader(f.Kind)}
	var total float64
	for _, s := range segs {
		a, b := pts[s[0]], pts[s[1]]
		d := methods.Distance(a, b)
		total += d
		labels = append(labels, models.Label{
			FeatureID: f.ID,
			Kind:      models.LabelSegment,
			Position:  methods.Midpoint(a, b),
			Text:      fmt.Sprintf("%.1f m", d),
		})
		section.Rows = append(section.Rows, models.MeasurementRow{
			FeatureID: f.ID,
			Kind:      models.RowSegment,
			Name:      fmt.Sprintf("%s to %s", methods.PointName(s[0]), methods.PointName(s[1])),
			Value:     d,
			Unit:      "m",
		})
	}
	section.Rows = append(section.Rows, models.MeasurementRow{
		FeatureID: f.ID, Kind: models.RowTotalDistance, Name: "Total Distance", Value: total, Unit: "m",
	})
	if f.Kind == models.KindPolygon {
		c := methods.Centroid(pts)
		section.Rows = append(section.Rows,
			models.MeasurementRow{
				FeatureID: f.ID, Kind: models.RowArea, Name: "Area (ha)",
				Value: methods.SquareMetresToHectares(methods.RingArea(pts)), Unit: "ha",
			},
			models.MeasurementRow{
				FeatureID: f.ID, Kind: models.RowCentroid, Name: "Center Point",
				Easting: c[0], Northing: c[1],
			},
		)
	}
	return labels, section
}
