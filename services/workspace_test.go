package services

import (
	"testing"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawPolygon(t *testing.T, w *Workspace, pts []orb.Point) models.Feature {
	t.Helper()
	require.NoError(t, w.StartDraw(models.KindPolygon))
	f, err := w.EndDraw(pts)
	require.NoError(t, err)
	return f
}

func TestWorkspaceDrawCommitsAndAnnotates(t *testing.T) {
	w := NewWorkspace(nil)
	require.NoError(t, w.StartDraw(models.KindPolygon))
	require.NoError(t, w.PreviewDraw(triangle[:2]))
	assert.Len(t, w.Snapshot().Preview, 3)
	assert.Empty(t, w.Features())

	f, err := w.EndDraw(triangle)
	require.NoError(t, err)
	assert.Equal(t, "idle", w.State().Mode)
	assert.Len(t, w.Features(), 1)
	assert.Len(t, w.Labels(), 6)
	assert.Len(t, w.Table(), 1)
	assert.Empty(t, w.Snapshot().Preview)
	assert.Equal(t, f.ID, w.Table()[0].FeatureID)
}

func TestWorkspaceCancelDrawDiscards(t *testing.T) {
	w := NewWorkspace(nil)
	require.NoError(t, w.StartDraw(models.KindPolyline))
	require.NoError(t, w.PreviewDraw([]orb.Point{{0, 0}, {5, 5}}))
	require.NoError(t, w.CancelDraw())
	assert.Empty(t, w.Features())
	assert.Empty(t, w.Snapshot().Preview)
	assert.Equal(t, "idle", w.State().Mode)
}

func TestWorkspaceInvalidDrawStaysOpen(t *testing.T) {
	w := NewWorkspace(nil)
	require.NoError(t, w.StartDraw(models.KindPolygon))
	_, err := w.EndDraw(triangle[:2])
	assert.ErrorIs(t, err, models.ErrInvalidGeometry)
	assert.Equal(t, "drawing", w.State().Mode)
	assert.Empty(t, w.Features())
}

func TestWorkspaceModify(t *testing.T) {
	w := NewWorkspace(nil)
	f := drawPolygon(t, w, triangle)

	assert.ErrorIs(t, w.StartModify("nope"), models.ErrNotFound)
	require.NoError(t, w.StartModify(f.ID))
	assert.ErrorIs(t, w.StartDraw(models.KindPolygon), models.ErrModeConflict)
	assert.ErrorIs(t, w.Clear(), models.ErrModeConflict)

	sq := []orb.Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	updated, err := w.EndModify(sq)
	require.NoError(t, err)
	assert.Equal(t, f.ID, updated.ID)
	assert.Len(t, w.Labels(), 8)
	rows := w.Table()[0].Rows
	assert.Equal(t, "1.00", rows[len(rows)-2].ValueText()[0])
}

func TestWorkspaceModifyPublishesOnce(t *testing.T) {
	w := NewWorkspace(nil)
	f := drawPolygon(t, w, triangle)
	require.NoError(t, w.StartModify(f.ID))

	ch, cancel := w.Subscribe()
	defer cancel()
	<-ch

	_, err := w.EndModify([]orb.Point{{0, 0}, {1, 1}})
	assert.ErrorIs(t, err, models.ErrInvalidGeometry)
	assert.Equal(t, "modifying", w.State().Mode)
	assert.Empty(t, ch)

	_, err = w.EndModify([]orb.Point{{0, 0}, {100, 0}, {100, 100}})
	require.NoError(t, err)
	require.Len(t, ch, 1)
	snap := <-ch
	assert.Equal(t, "idle", snap.Mode)
	assert.Len(t, snap.Labels, 6)
}

func TestWorkspaceClearEmptiesEverything(t *testing.T) {
	w := NewWorkspace(nil)
	drawPolygon(t, w, triangle)
	drawPolygon(t, w, []orb.Point{{0, 0}, {10, 0}, {10, 10}})
	require.NoError(t, w.Clear())
	assert.Empty(t, w.Features())
	assert.Empty(t, w.Labels())
	assert.Empty(t, w.Table())
}

func TestWorkspaceAppendAllKeepsExisting(t *testing.T) {
	w := NewWorkspace(nil)
	first := drawPolygon(t, w, triangle)
	added, err := w.AppendAll("import", []models.Feature{
		{ID: first.ID, Kind: models.KindPolyline, Vertices: []orb.Point{{0, 0}, {1, 1}}},
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotEqual(t, first.ID, added[0].ID)
	assert.Len(t, w.Features(), 2)
}

func TestWorkspaceSubscribersReceiveRebuilds(t *testing.T) {
	w := NewWorkspace(nil)
	ch, cancel := w.Subscribe()
	defer cancel()

	initial := <-ch
	assert.Equal(t, "idle", initial.Mode)
	assert.Empty(t, initial.Labels)

	drawPolygon(t, w, triangle)
	var last models.AnnotationSnapshot
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Len(t, last.Labels, 6)
	assert.Len(t, last.Sections, 1)
}

func TestWorkspaceDropsSlowSubscriber(t *testing.T) {
	w := NewWorkspace(nil)
	ch, cancel := w.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer+2; i++ {
		require.NoError(t, w.StartDraw(models.KindPolyline))
		require.NoError(t, w.CancelDraw())
	}
	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)
}

func TestWorkspaceRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	w := NewWorkspace(m)
	drawPolygon(t, w, triangle)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "sitemeasure_features" {
			found = true
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}
