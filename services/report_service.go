package services

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/GrainArc/SiteMeasure/ImgHandler"
	"github.com/GrainArc/SiteMeasure/PdfGenerator"
	"github.com/GrainArc/SiteMeasure/WordGenerator"
	"github.com/GrainArc/SiteMeasure/methods"
	"github.com/GrainArc/SiteMeasure/models"
)

// Page geometry in millimetres, landscape A4, origin top-left.
const (
	PageWidthMM  = 297.0
	PageHeightMM = 210.0

	imageX          = 10.0
	imageY          = 10.0
	tableGap        = 10.0
	columnOffset    = 38.0
	cellWidth       = 38.0
	cellHeight      = 10.0
	centroidHeight  = 15.0
	tableTop        = 20.0
	cellTextOffset  = 6.0
	bottomMargin    = 10.0
	tableFontSize   = 10.0
	DefaultOutputMM = 200.0

	maxImageHeight = PageHeightMM - imageY - 2*bottomMargin
)

var headerFill = [3]uint8{200, 200, 200}

type OpKind int

const (
	OpImage OpKind = iota
	OpFillRect
	OpStrokeRect
	OpText
)

// LayoutOp is one drawing primitive in page millimetres. Text Y is the baseline.
type LayoutOp struct {
	Kind OpKind
	X, Y float64
	W, H float64
	Fill [3]uint8
	Text string
	Size float64
	Bold bool
}

type Layout struct {
	PageWidth  float64
	PageHeight float64
	Image      image.Image
	Ops        []LayoutOp
}

// Canvas is a document backend. Coordinates are millimetres from the top-left.
type Canvas interface {
	DrawImage(img image.Image, x, y, w, h float64) error
	FillRect(x, y, w, h float64, rgb [3]uint8) error
	StrokeRect(x, y, w, h float64) error
	Text(s string, x, y, size float64, bold bool) error
}

// Render replays the layout onto c in order.
func (l *Layout) Render(c Canvas) error {
	for _, op := range l.Ops {
		var err error
		switch op.Kind {
		case OpImage:
			err = c.DrawImage(l.Image, op.X, op.Y, op.W, op.H)
		case OpFillRect:
			err = c.FillRect(op.X, op.Y, op.W, op.H, op.Fill)
		case OpStrokeRect:
			err = c.StrokeRect(op.X, op.Y, op.W, op.H)
		case OpText:
			err = c.Text(op.Text, op.X, op.Y, op.Size, op.Bold)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type ReportRequest struct {
	Capture       []byte           `json:"capture"`
	Viewport      *models.Viewport `json:"viewport"`
	OutputWidthMM float64          `json:"output_width_mm"`
}

// Report is a transient snapshot: image, table and scale at capture time.
type Report struct {
	Scale    int64
	WidthMM  float64
	Image    image.Image
	Sections []models.TableSection
	Layout   *Layout
}

func (r *Report) ScaleText() string {
	return fmt.Sprintf("1:%d", r.Scale)
}

type ReportService struct {
	outputWidthMM float64
	metrics       *Metrics
}

func NewReportService(outputWidthMM float64, metrics *Metrics) *ReportService {
	if outputWidthMM <= 0 {
		outputWidthMM = DefaultOutputMM
	}
	return &ReportService{outputWidthMM: outputWidthMM, metrics: metrics}
}

// Compose builds the report from a feature snapshot. The capture is decoded
// and stamped before any measurement is taken.
func (s *ReportService) Compose(features []models.Feature, req ReportRequest) (*Report, error) {
	img, _, err := ImgHandler.DecodeCapture(req.Capture)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCaptureFailure, err)
	}
	if req.Viewport == nil || req.Viewport.Empty() {
		return nil, fmt.Errorf("%w: viewport unavailable", models.ErrCaptureFailure)
	}
	img = ImgHandler.StampNorthArrow(ImgHandler.Flatten(img))

	width := req.OutputWidthMM
	if width <= 0 {
		width = s.outputWidthMM
	}
	vp := *req.Viewport
	pw, ph := vp.PixelWidth, vp.PixelHeight
	if pw <= 0 || ph <= 0 {
		pw, ph = img.Bounds().Dx(), img.Bounds().Dy()
	}
	height := float64(ph) * width / float64(pw)
	if height > maxImageHeight {
		// the printed width shrinks with the image so the ratio stays true
		height = maxImageHeight
		width = height * float64(pw) / float64(ph)
	}

	groundWidth := methods.Distance(vp.BottomLeft(), vp.BottomRight())
	report := &Report{
		Scale:    methods.ScaleDenominator(groundWidth, width),
		WidthMM:  width,
		Image:    img,
		Sections: BuildTable(features),
	}
	layout, err := layoutReport(report, width, height)
	if err != nil {
		return nil, err
	}
	report.Layout = layout
	log.Printf("report composed: %d features, scale %s", len(features), report.ScaleText())
	return report, nil
}

// tableColumn is one area the table may fill. x and top are the text origin
// of the first cell; limit is the lowest cell bottom allowed.
type tableColumn struct {
	x, top, limit float64
}

type tableWriter struct {
	ops     []LayoutOp
	cols    []tableColumn
	cur     int
	x       float64
	col2    float64
	y       float64
	section [2]string
	full    bool
}

func newTableWriter(cols []tableColumn) *tableWriter {
	t := &tableWriter{cols: cols}
	if len(cols) == 0 {
		t.full = true
		return t
	}
	t.moveTo(0)
	return t
}

func (t *tableWriter) moveTo(i int) {
	c := t.cols[i]
	t.cur, t.x, t.col2, t.y = i, c.x, c.x+columnOffset, c.top
}

// place makes room for a cell of height h, continuing in the next column when
// the current one is full. A section header is repeated at the top of the new
// column.
func (t *tableWriter) place(h float64) bool {
	for !t.full && t.y-cellTextOffset+h > t.cols[t.cur].limit {
		if t.cur+1 >= len(t.cols) {
			t.full = true
			break
		}
		t.moveTo(t.cur + 1)
		if t.section[0] != "" {
			t.headerCells(t.section)
		}
	}
	return !t.full
}

func (t *tableWriter) text(s string, x, y float64, bold bool) {
	t.ops = append(t.ops, LayoutOp{Kind: OpText, X: x, Y: y, Text: s, Size: tableFontSize, Bold: bold})
}

func (t *tableWriter) cells(h float64) {
	t.ops = append(t.ops,
		LayoutOp{Kind: OpStrokeRect, X: t.x - 2, Y: t.y - cellTextOffset, W: cellWidth, H: h},
		LayoutOp{Kind: OpStrokeRect, X: t.col2 - 2, Y: t.y - cellTextOffset, W: cellWidth, H: h},
	)
}

func (t *tableWriter) shade(h float64) {
	t.ops = append(t.ops, LayoutOp{Kind: OpFillRect, X: t.x - 2, Y: t.y - cellTextOffset, W: cellWidth, H: h, Fill: headerFill})
}

func (t *tableWriter) headerCells(cols [2]string) {
	t.shade(cellHeight)
	t.text(cols[0], t.x, t.y, true)
	t.text(cols[1], t.col2, t.y, true)
	t.cells(cellHeight)
	t.y += cellHeight
}

// header starts a section; it is never left alone at the bottom of a column.
func (t *tableWriter) header(cols [2]string) {
	t.section = [2]string{}
	if !t.place(2 * cellHeight) {
		return
	}
	t.section = cols
	t.headerCells(cols)
}

func (t *tableWriter) row(r models.MeasurementRow) {
	h := cellHeight
	if r.Kind == models.RowCentroid {
		h = centroidHeight
	}
	if !t.place(h) {
		return
	}
	vals := r.ValueText()
	if r.Kind == models.RowCentroid {
		t.shade(centroidHeight)
		t.text(r.Name, t.x, t.y+3, true)
		t.text(vals[0], t.col2, t.y, false)
		t.text(vals[1], t.col2, t.y+6, false)
		t.cells(centroidHeight)
		t.y += centroidHeight
		return
	}
	if r.Summary() {
		t.shade(cellHeight)
	}
	t.text(r.Name, t.x, t.y, r.Summary())
	t.text(vals[0], t.col2, t.y, false)
	t.cells(cellHeight)
	t.y += cellHeight
}

// tableColumns lists the table areas in fill order: right of the image, then
// left to right in the band under it, above the scale line.
func tableColumns(imgW, imgH float64) []tableColumn {
	var cols []tableColumn
	x := imageX + imgW + tableGap
	if x-2+columnOffset+cellWidth <= PageWidthMM {
		cols = append(cols, tableColumn{x: x, top: tableTop, limit: PageHeightMM - bottomMargin})
	}
	top := imageY + imgH + tableGap
	limit := PageHeightMM - bottomMargin - cellHeight
	if limit-top < cellHeight+centroidHeight {
		return cols
	}
	for left := imageX; left+2*cellWidth <= imageX+imgW; left += 2*cellWidth + tableGap {
		cols = append(cols, tableColumn{x: left + 2, top: top + cellTextOffset, limit: limit})
	}
	return cols
}

func layoutReport(r *Report, imgW, imgH float64) (*Layout, error) {
	l := &Layout{PageWidth: PageWidthMM, PageHeight: PageHeightMM, Image: r.Image}
	l.Ops = append(l.Ops, LayoutOp{Kind: OpImage, X: imageX, Y: imageY, W: imgW, H: imgH})

	t := newTableWriter(tableColumns(imgW, imgH))
	rows := 0
	for _, sec := range r.Sections {
		t.header(sec.Header)
		for _, row := range sec.Rows {
			t.row(row)
			rows++
		}
	}
	t.section = [2]string{}
	t.row(models.MeasurementRow{Kind: models.RowScale, Name: "Scale", Value: float64(r.Scale)})

	if t.full {
		return nil, fmt.Errorf("%w: %d rows do not fit on one page", models.ErrReportOverflow, rows+1)
	}
	l.Ops = append(l.Ops, t.ops...)
	l.Ops = append(l.Ops, LayoutOp{
		Kind: OpText, X: imageX, Y: PageHeightMM - bottomMargin,
		Text: "Scale " + r.ScaleText(), Size: tableFontSize,
	})
	return l, nil
}

const (
	FormatPDF  = "pdf"
	FormatDocx = "docx"
)

// Generate composes and renders a report in one of the supported formats.
func (s *ReportService) Generate(features []models.Feature, req ReportRequest, format string) ([]byte, *Report, error) {
	if format != FormatDocx {
		format = FormatPDF
	}
	start := time.Now()
	report, err := s.Compose(features, req)
	var out []byte
	if err == nil {
		if format == FormatDocx {
			out, err = s.RenderDocx(report)
		} else {
			out, err = s.RenderPDF(report)
		}
	}
	s.metrics.Artifact("report_"+format, start, err)
	if err != nil {
		return nil, nil, err
	}
	return out, report, nil
}

func (s *ReportService) RenderPDF(r *Report) ([]byte, error) {
	c, err := PdfGenerator.NewCanvas(r.Layout.PageWidth, r.Layout.PageHeight)
	if err != nil {
		return nil, err
	}
	if err := r.Layout.Render(c); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return c.Bytes()
}

func (s *ReportService) RenderDocx(r *Report) ([]byte, error) {
	img, err := ImgHandler.EncodePNG(r.Image)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	box := r.Layout.Ops[0]
	return WordGenerator.Build(WordGenerator.MapDocument{
		Image:     img,
		WidthMM:   box.W,
		HeightMM:  box.H,
		Sections:  r.Sections,
		ScaleText: r.ScaleText(),
	})
}
