package WordGenerator

import (
	"bytes"
	"fmt"

	"gitee.com/gooffice/gooffice/color"
	"gitee.com/gooffice/gooffice/common"
	"gitee.com/gooffice/gooffice/document"
	"gitee.com/gooffice/gooffice/measurement"
	"gitee.com/gooffice/gooffice/schema/soo/wml"
	"github.com/GrainArc/SiteMeasure/models"
)

var shadeColor = color.RGB(200, 200, 200)

// MapDocument holds what goes into map.docx.
type MapDocument struct {
	Image     []byte
	WidthMM   float64
	HeightMM  float64
	Sections  []models.TableSection
	ScaleText string
}

func AddText(doc *document.Document, text string, iscenter bool) {
	para := doc.AddParagraph()
	if iscenter {
		para.Properties().SetAlignment(wml.ST_JcCenter)
	}
	run := para.AddRun()
	run.Properties().SetSize(10)
	run.AddText(text)
}

func AddTextBlod(doc *document.Document, text string, iscenter bool) {
	para := doc.AddParagraph()
	if iscenter {
		para.Properties().SetAlignment(wml.ST_JcCenter)
	}
	run := para.AddRun()
	run.Properties().SetSize(10)
	run.Properties().SetBold(true)
	run.AddText(text)
}

func addCell(row document.Row, lines []string, bold, shaded bool) {
	cell := row.AddCell()
	if shaded {
		cell.Properties().SetShading(wml.ST_ShdSolid, shadeColor, color.Auto)
	}
	for _, line := range lines {
		p := cell.AddParagraph()
		run := p.AddRun()
		run.Properties().SetSize(10)
		run.Properties().SetBold(bold)
		run.AddText(line)
	}
}

// OutTable writes the measurement sections followed by the scale row.
func OutTable(doc *document.Document, sections []models.TableSection, scaleText string) {
	table := doc.AddTable()
	table.Properties().SetWidthPercent(100)
	borders := table.Properties().Borders()
	borders.SetAll(wml.ST_BorderSingle, color.Auto, 1*measurement.Point)

	for _, sec := range sections {
		row := table.AddRow()
		addCell(row, []string{sec.Header[0]}, true, true)
		addCell(row, []string{sec.Header[1]}, true, false)
		for _, r := range sec.Rows {
			row = table.AddRow()
			addCell(row, []string{r.Name}, r.Summary(), r.Summary())
			addCell(row, r.ValueText(), false, false)
		}
	}
	row := table.AddRow()
	addCell(row, []string{"Scale"}, true, true)
	addCell(row, []string{scaleText}, false, false)
}

// Build renders the document to bytes: landscape A4, snapshot first, then the
// measurement table and the scale line.
func Build(m MapDocument) ([]byte, error) {
	doc := document.New()
	defer doc.Close()
	doc.BodySection().SetPageSizeAndOrientation(297*measurement.Millimeter, 210*measurement.Millimeter, wml.ST_PageOrientationLandscape)

	img, err := common.ImageFromBytes(m.Image)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	imgRef, err := doc.AddImage(img)
	if err != nil {
		return nil, fmt.Errorf("add snapshot: %w", err)
	}
	run := doc.AddParagraph().AddRun()
	inline, err := run.AddDrawingInline(imgRef)
	if err != nil {
		return nil, fmt.Errorf("place snapshot: %w", err)
	}
	inline.SetSize(measurement.Distance(m.WidthMM)*measurement.Millimeter, measurement.Distance(m.HeightMM)*measurement.Millimeter)

	OutTable(doc, m.Sections, m.ScaleText)
	AddText(doc, "Scale "+m.ScaleText, false)

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("save docx: %w", err)
	}
	return buf.Bytes(), nil
}
