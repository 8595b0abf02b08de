package services

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngCapture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func viewport(width float64) *models.Viewport {
	return &models.Viewport{MinX: 530000, MinY: 180000, MaxX: 530000 + width, MaxY: 180000 + width/2, PixelWidth: 800, PixelHeight: 400}
}

type recordingCanvas struct {
	calls []string
}

func (r *recordingCanvas) DrawImage(img image.Image, x, y, w, h float64) error {
	r.calls = append(r.calls, fmt.Sprintf("image %.0f,%.0f %.0fx%.0f", x, y, w, h))
	return nil
}

func (r *recordingCanvas) FillRect(x, y, w, h float64, rgb [3]uint8) error {
	r.calls = append(r.calls, fmt.Sprintf("fill %.0f,%.0f %.0fx%.0f %v", x, y, w, h, rgb))
	return nil
}

func (r *recordingCanvas) StrokeRect(x, y, w, h float64) error {
	r.calls = append(r.calls, fmt.Sprintf("rect %.0f,%.0f %.0fx%.0f", x, y, w, h))
	return nil
}

func (r *recordingCanvas) Text(s string, x, y, size float64, bold bool) error {
	r.calls = append(r.calls, fmt.Sprintf("text %q %.0f,%.0f bold=%v", s, x, y, bold))
	return nil
}

func TestComposeScaleScenario(t *testing.T) {
	s := NewReportService(200, nil)
	r, err := s.Compose(nil, ReportRequest{Capture: pngCapture(t, 800, 400), Viewport: viewport(1000)})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), r.Scale)
	assert.Equal(t, "1:5000", r.ScaleText())

	last := r.Layout.Ops[len(r.Layout.Ops)-1]
	assert.Equal(t, OpText, last.Kind)
	assert.Equal(t, "Scale 1:5000", last.Text)
	assert.Equal(t, 10.0, last.X)
	assert.Equal(t, PageHeightMM-10, last.Y)
}

func TestComposeLayoutConstants(t *testing.T) {
	sq := []orb.Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	features := []models.Feature{{ID: "p", Kind: models.KindPolygon, Vertices: sq, Closed: true}}
	s := NewReportService(0, nil)
	r, err := s.Compose(features, ReportRequest{Capture: pngCapture(t, 800, 400), Viewport: viewport(1000)})
	require.NoError(t, err)

	rec := &recordingCanvas{}
	require.NoError(t, r.Layout.Render(rec))
	assert.Equal(t, "image 10,10 200x100", rec.calls[0])
	assert.Equal(t, "fill 218,14 38x10 [200 200 200]", rec.calls[1])
	assert.Equal(t, `text "Segment" 220,20 bold=true`, rec.calls[2])
	assert.Equal(t, `text "Distance (m)" 258,20 bold=true`, rec.calls[3])
	assert.Equal(t, "rect 218,14 38x10", rec.calls[4])
	assert.Equal(t, "rect 256,14 38x10", rec.calls[5])
	assert.Contains(t, rec.calls, `text "A to B" 220,30 bold=false`)
	assert.Contains(t, rec.calls, `text "100.0" 258,30 bold=false`)
	assert.Contains(t, rec.calls, `text "1.00" 258,80 bold=false`)
	assert.Contains(t, rec.calls, "fill 218,84 38x15 [200 200 200]")
	assert.Contains(t, rec.calls, `text "Center Point" 220,93 bold=true`)
	assert.Contains(t, rec.calls, `text "E: 50.0" 258,90 bold=false`)
	assert.Contains(t, rec.calls, `text "N: 50.0" 258,96 bold=false`)
	assert.Contains(t, rec.calls, `text "1:5000" 258,105 bold=false`)
}

func TestComposeNoFeaturesStillHasImageAndScale(t *testing.T) {
	s := NewReportService(200, nil)
	r, err := s.Compose(nil, ReportRequest{Capture: pngCapture(t, 800, 400), Viewport: viewport(500)})
	require.NoError(t, err)
	assert.Empty(t, r.Sections)
	assert.Equal(t, OpImage, r.Layout.Ops[0].Kind)
	assert.Equal(t, int64(2500), r.Scale)
}

func TestComposeCaptureFailure(t *testing.T) {
	s := NewReportService(200, nil)
	_, err := s.Compose(nil, ReportRequest{Capture: []byte("nope"), Viewport: viewport(1000)})
	assert.ErrorIs(t, err, models.ErrCaptureFailure)

	_, err = s.Compose(nil, ReportRequest{Capture: pngCapture(t, 10, 10)})
	assert.ErrorIs(t, err, models.ErrCaptureFailure)

	_, err = s.Compose(nil, ReportRequest{Capture: pngCapture(t, 10, 10), Viewport: &models.Viewport{}})
	assert.ErrorIs(t, err, models.ErrCaptureFailure)
}

func TestComposeTallImageKeepsScaleTrue(t *testing.T) {
	s := NewReportService(200, nil)
	vp := viewport(1000)
	vp.PixelWidth, vp.PixelHeight = 400, 800
	r, err := s.Compose(nil, ReportRequest{Capture: pngCapture(t, 400, 800), Viewport: vp})
	require.NoError(t, err)
	img := r.Layout.Ops[0]
	assert.InDelta(t, 180.0, img.H, 1e-9)
	assert.InDelta(t, 90.0, img.W, 1e-9)
	assert.Equal(t, int64(11111), r.Scale)
	assert.InDelta(t, 90.0, r.WidthMM, 1e-9)
}

func regularPolygon(n int, radius float64) []orb.Point {
	pts := make([]orb.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = orb.Point{radius * math.Cos(a), radius * math.Sin(a)}
	}
	return pts
}

func TestComposeLongTableContinuesUnderImage(t *testing.T) {
	features := []models.Feature{{ID: "p", Kind: models.KindPolygon, Vertices: regularPolygon(15, 100), Closed: true}}
	s := NewReportService(200, nil)
	r, err := s.Compose(features, ReportRequest{Capture: pngCapture(t, 800, 400), Viewport: viewport(1000)})
	require.NoError(t, err)

	rec := &recordingCanvas{}
	require.NoError(t, r.Layout.Render(rec))
	assert.Contains(t, rec.calls, `text "O to A" 220,170 bold=false`)
	assert.Contains(t, rec.calls, `text "Area (ha)" 220,190 bold=true`)
	// the centroid does not fit beside the image and moves below it under a repeated header
	assert.Contains(t, rec.calls, "fill 10,120 38x10 [200 200 200]")
	assert.Contains(t, rec.calls, `text "Segment" 12,126 bold=true`)
	assert.Contains(t, rec.calls, `text "Center Point" 12,139 bold=true`)
	assert.Contains(t, rec.calls, `text "1:5000" 50,151 bold=false`)
	assert.Equal(t, `text "Scale 1:5000" 10,200 bold=false`, rec.calls[len(rec.calls)-1])

	for _, op := range r.Layout.Ops[1:] {
		if op.Kind == OpStrokeRect {
			assert.LessOrEqual(t, op.Y+op.H, PageHeightMM-10, "%+v", op)
			assert.LessOrEqual(t, op.X+op.W, PageWidthMM, "%+v", op)
		}
	}
}

func TestComposeOverflow(t *testing.T) {
	var features []models.Feature
	for i := 0; i < 10; i++ {
		features = append(features, models.Feature{ID: fmt.Sprint(i), Kind: models.KindPolygon, Vertices: triangle, Closed: true})
	}
	s := NewReportService(200, nil)
	_, err := s.Compose(features, ReportRequest{Capture: pngCapture(t, 800, 400), Viewport: viewport(1000)})
	assert.ErrorIs(t, err, models.ErrReportOverflow)
}

func TestGeneratePDF(t *testing.T) {
	s := NewReportService(200, nil)
	out, r, err := s.Generate([]models.Feature{{ID: "p", Kind: models.KindPolygon, Vertices: triangle, Closed: true}},
		ReportRequest{Capture: pngCapture(t, 800, 400), Viewport: viewport(1000)}, FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, int64(5000), r.Scale)
}

func TestGenerateDocx(t *testing.T) {
	s := NewReportService(200, nil)
	out, _, err := s.Generate(nil, ReportRequest{Capture: pngCapture(t, 800, 400), Viewport: viewport(1000)}, FormatDocx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("PK")))
}
