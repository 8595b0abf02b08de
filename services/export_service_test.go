package services

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/GrainArc/SiteMeasure/Transformer"
	"github.com/GrainArc/SiteMeasure/models"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = raw
	}
	return out
}

func TestExportLayersTriangle(t *testing.T) {
	s := NewExportService(ExportOptions{}, nil)
	set, err := s.Layers([]models.Feature{{ID: "t", Kind: models.KindPolygon, Vertices: triangle, Closed: true}})
	require.NoError(t, err)
	require.Len(t, set.Polygons.Features, 1)
	assert.Empty(t, set.Points.Features)
	assert.Empty(t, set.Lines.Features)

	poly := set.Polygons.Features[0].Geometry.(orb.Polygon)
	require.Len(t, poly[0], 4)
	assert.Equal(t, poly[0][0], poly[0][3])
	assert.Equal(t, "Polygon", set.Polygons.Features[0].Properties["kind"])
	assert.InDelta(t, 0.4, set.Polygons.Features[0].Properties["area_ha"], 1e-9)
}

func TestExportEmptyIsNoGeometry(t *testing.T) {
	s := NewExportService(ExportOptions{}, nil)
	_, err := s.Layers(nil)
	assert.ErrorIs(t, err, models.ErrNoGeometry)
	_, err = s.Shapefile(nil)
	assert.ErrorIs(t, err, models.ErrNoGeometry)
	_, err = s.DXF(nil)
	assert.ErrorIs(t, err, models.ErrNoGeometry)
}

func TestExportRejectsReprojection(t *testing.T) {
	s := NewExportService(ExportOptions{SourceEPSG: 27700, TargetEPSG: 4326}, nil)
	_, err := s.Shapefile([]models.Feature{{ID: "t", Kind: models.KindPolygon, Vertices: triangle, Closed: true}})
	assert.ErrorIs(t, err, models.ErrUnsupportedCRS)
}

func TestExportShapefileArchive(t *testing.T) {
	s := NewExportService(ExportOptions{}, nil)
	out, err := s.Shapefile([]models.Feature{
		{ID: "t", Kind: models.KindPolygon, Vertices: triangle, Closed: true},
		{ID: "l", Kind: models.KindPolyline, Vertices: triangle[:2]},
	})
	require.NoError(t, err)

	entries := zipEntries(t, out)
	var names []string
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, layer := range []string{"lines", "polygons"} {
		for _, ext := range []string{".shp", ".shx", ".dbf", ".prj", ".cpg"} {
			assert.Contains(t, names, "shapefile/"+layer+ext)
		}
	}
	for _, name := range names {
		assert.False(t, strings.HasPrefix(name, "shapefile/points"), name)
	}
	assert.Contains(t, string(entries["shapefile/polygons.prj"]), "British_National_Grid")
	assert.Equal(t, "UTF-8", string(entries["shapefile/polygons.cpg"]))
}

func TestExportImportRoundTrip(t *testing.T) {
	s := NewExportService(ExportOptions{}, nil)
	in := []models.Feature{
		{ID: "t", Kind: models.KindPolygon, Vertices: triangle, Closed: true},
		{ID: "l", Kind: models.KindPolyline, Vertices: []orb.Point{{0, 0}, {10, 0}, {10, 10}}},
		{ID: "p", Kind: models.KindPoint, Vertices: []orb.Point{{5, 5}}},
	}
	out, err := s.Shapefile(in)
	require.NoError(t, err)

	back, err := s.Import(out)
	require.NoError(t, err)
	require.Len(t, back, 3)

	byKind := make(map[models.GeometryKind]models.Feature)
	for _, f := range back {
		byKind[f.Kind] = f
	}
	assert.Equal(t, []orb.Point{{5, 5}}, byKind[models.KindPoint].Vertices)
	assert.Equal(t, in[1].Vertices, byKind[models.KindPolyline].Vertices)
	poly := byKind[models.KindPolygon]
	assert.True(t, poly.Closed)
	assert.Len(t, poly.Vertices, 3)
	assert.ElementsMatch(t, triangle, poly.Vertices)
	assert.True(t, Transformer.IsClockwise(append(poly.Vertices, poly.Vertices[0])), "outer ring is written clockwise")
	assert.Equal(t, "t", poly.ID)
}

func TestImportRejectsGarbage(t *testing.T) {
	s := NewExportService(ExportOptions{}, nil)
	_, err := s.Import([]byte("not a zip"))
	assert.ErrorIs(t, err, models.ErrInvalidGeometry)
}

func TestExportDXF(t *testing.T) {
	s := NewExportService(ExportOptions{}, nil)
	out, err := s.DXF([]models.Feature{{ID: "t", Kind: models.KindPolygon, Vertices: triangle, Closed: true}})
	require.NoError(t, err)
	body := string(out)
	assert.Contains(t, body, "LWPOLYLINE")
	assert.Contains(t, body, "Polygons")
}
