package PdfGenerator

import (
	"bytes"
	"fmt"
	"image"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font/standard"
	"seehuhn.de/go/pdf/font/type1"
	"seehuhn.de/go/pdf/graphics/color"
	pdfimage "seehuhn.de/go/pdf/graphics/image"
)

const ptPerMM = 72 / 25.4

// Canvas draws onto a single PDF page using millimetres from the top-left
// corner, the way the report layout is expressed.
type Canvas struct {
	buf      *bytes.Buffer
	page     *document.Page
	heightMM float64
	regular  *type1.Instance
	bold     *type1.Instance
}

// NewCanvas starts a one-page document of the given size in millimetres.
func NewCanvas(widthMM, heightMM float64) (*Canvas, error) {
	regular, err := standard.Helvetica.New(nil)
	if err != nil {
		return nil, fmt.Errorf("load helvetica: %w", err)
	}
	bold, err := standard.HelveticaBold.New(nil)
	if err != nil {
		return nil, fmt.Errorf("load helvetica bold: %w", err)
	}
	buf := &bytes.Buffer{}
	paper := &pdf.Rectangle{URx: widthMM * ptPerMM, URy: heightMM * ptPerMM}
	page, err := document.WriteSinglePage(buf, paper, pdf.V1_7, nil)
	if err != nil {
		return nil, fmt.Errorf("create pdf page: %w", err)
	}
	return &Canvas{buf: buf, page: page, heightMM: heightMM, regular: regular, bold: bold}, nil
}

func (c *Canvas) x(mm float64) float64 { return mm * ptPerMM }
func (c *Canvas) y(mm float64) float64 { return (c.heightMM - mm) * ptPerMM }

func (c *Canvas) DrawImage(img image.Image, x, y, w, h float64) error {
	if img == nil {
		return fmt.Errorf("draw image: nil image")
	}
	xobj := pdfimage.FromImage(img, color.SpaceDeviceRGB, 8)
	c.page.PushGraphicsState()
	c.page.Transform(matrix.Matrix{w * ptPerMM, 0, 0, h * ptPerMM, c.x(x), c.y(y + h)})
	c.page.DrawXObject(xobj)
	c.page.PopGraphicsState()
	return nil
}

func (c *Canvas) FillRect(x, y, w, h float64, rgb [3]uint8) error {
	c.page.PushGraphicsState()
	c.page.SetFillColor(color.DeviceRGB(float64(rgb[0])/255, float64(rgb[1])/255, float64(rgb[2])/255))
	c.page.Rectangle(c.x(x), c.y(y+h), w*ptPerMM, h*ptPerMM)
	c.page.Fill()
	c.page.PopGraphicsState()
	return nil
}

func (c *Canvas) StrokeRect(x, y, w, h float64) error {
	c.page.PushGraphicsState()
	c.page.SetStrokeColor(color.DeviceRGB(0, 0, 0))
	c.page.SetLineWidth(0.2 * ptPerMM)
	c.page.Rectangle(c.x(x), c.y(y+h), w*ptPerMM, h*ptPerMM)
	c.page.Stroke()
	c.page.PopGraphicsState()
	return nil
}

// Text places s with its baseline at (x, y).
func (c *Canvas) Text(s string, x, y, size float64, bold bool) error {
	f := c.regular
	if bold {
		f = c.bold
	}
	var raw pdf.String
	for _, g := range f.Layout(nil, size, s).Seq {
		code, ok := f.Encode(g.GID, g.Text)
		if !ok {
			return fmt.Errorf("text %q: glyph %q not encodable", s, g.Text)
		}
		raw = append(raw, byte(code))
	}
	c.page.TextBegin()
	c.page.TextSetFont(f, size)
	c.page.TextFirstLine(c.x(x), c.y(y))
	c.page.TextShowRaw(raw)
	c.page.TextEnd()
	return nil
}

// Bytes closes the page and returns the finished document.
func (c *Canvas) Bytes() ([]byte, error) {
	if err := c.page.Close(); err != nil {
		return nil, fmt.Errorf("close pdf: %w", err)
	}
	return c.buf.Bytes(), nil
}
