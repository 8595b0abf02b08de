package services

import (
	"testing"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countLabels(labels []models.Label, kind models.LabelKind) int {
	n := 0
	for _, l := range labels {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

func TestAnnotationCountsPolygon(t *testing.T) {
	sq := []orb.Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}}
	m := NewAnnotationManager()
	m.Rebuild([]models.Feature{{ID: "p", Kind: models.KindPolygon, Vertices: sq, Closed: true}})

	labels := m.Labels()
	assert.Equal(t, 4, countLabels(labels, models.LabelPoint))
	assert.Equal(t, 4, countLabels(labels, models.LabelSegment))

	table := m.Table()
	require.Len(t, table, 1)
	assert.Equal(t, [2]string{"Segment", "Distance (m)"}, table[0].Header)
	rows := table[0].Rows
	require.Len(t, rows, 7)
	assert.Equal(t, "A to B", rows[0].Name)
	assert.Equal(t, "D to A", rows[3].Name)
	assert.InDelta(t, 100.0, rows[3].Value, 1e-9)
	assert.Equal(t, models.RowTotalDistance, rows[4].Kind)
	assert.InDelta(t, 400.0, rows[4].Value, 1e-9)
	assert.Equal(t, models.RowArea, rows[5].Kind)
	assert.Equal(t, []string{"1.00"}, rows[5].ValueText())
	assert.Equal(t, models.RowCentroid, rows[6].Kind)
	assert.Equal(t, []string{"E: 50.0", "N: 50.0"}, rows[6].ValueText())
}

func TestAnnotationCountsPolyline(t *testing.T) {
	line := []orb.Point{{0, 0}, {30, 40}, {30, 100}}
	m := NewAnnotationManager()
	m.Rebuild([]models.Feature{{ID: "l", Kind: models.KindPolyline, Vertices: line}})

	labels := m.Labels()
	assert.Equal(t, 3, countLabels(labels, models.LabelPoint))
	assert.Equal(t, 2, countLabels(labels, models.LabelSegment))

	rows := m.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "50.0 m", labels[3].Text)
	assert.Equal(t, orb.Point{15, 20}, labels[3].Position)
	assert.InDelta(t, 110.0, rows[2].Value, 1e-9)
	assert.Equal(t, [2]string{"Point/Line", "Distance (m)"}, m.Table()[0].Header)
}

func TestAnnotationPointFeature(t *testing.T) {
	m := NewAnnotationManager()
	m.Rebuild([]models.Feature{{ID: "pt", Kind: models.KindPoint, Vertices: []orb.Point{{5, 5}}}})
	assert.Len(t, m.Labels(), 1)
	assert.Empty(t, m.Table())
}

func TestAnnotationLabelsPastZ(t *testing.T) {
	var pts []orb.Point
	for i := 0; i < 28; i++ {
		pts = append(pts, orb.Point{float64(i), float64(i % 2)})
	}
	m := NewAnnotationManager()
	m.Rebuild([]models.Feature{{ID: "l", Kind: models.KindPolyline, Vertices: pts}})
	labels := m.Labels()
	assert.Equal(t, "Z", labels[25].Text)
	assert.Equal(t, "AA", labels[26].Text)
	assert.Equal(t, "AB", labels[27].Text)
	assert.Equal(t, "Z to AA", m.Rows()[25].Name)
}

func TestAnnotationRebuildReplacesEverything(t *testing.T) {
	m := NewAnnotationManager()
	m.Rebuild([]models.Feature{{ID: "a", Kind: models.KindPolygon, Vertices: triangle, Closed: true}})
	m.Rebuild([]models.Feature{{ID: "a", Kind: models.KindPolygon, Vertices: triangle, Closed: true}})
	assert.Len(t, m.Labels(), 6)
	m.Rebuild(nil)
	assert.Empty(t, m.Labels())
	assert.Empty(t, m.Rows())
}

func TestAnnotationPreviewIsSeparate(t *testing.T) {
	m := NewAnnotationManager()
	m.SetPreview(models.KindPolyline, []orb.Point{{0, 0}, {10, 0}})
	assert.Len(t, m.Preview(), 3)
	assert.Empty(t, m.Labels())
	m.SetPreview(models.KindPolyline, []orb.Point{{0, 0}})
	assert.Len(t, m.Preview(), 1)
	m.ClearPreview()
	assert.Empty(t, m.Preview())
}
