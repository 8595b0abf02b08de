package views

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/GrainArc/SiteMeasure/response"
	"github.com/GrainArc/SiteMeasure/services"
)

type reportBody struct {
	Capture       string           `json:"capture"`
	Viewport      *models.Viewport `json:"viewport"`
	OutputWidthMM float64          `json:"output_width_mm"`
}

var reportFiles = map[string]struct{ name, contentType string }{
	services.FormatPDF:  {"map.pdf", "application/pdf"},
	services.FormatDocx: {"map.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

// captureBytes accepts a data URL as is and plain base64 otherwise.
func captureBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		return []byte(s), nil
	}
	return base64.StdEncoding.DecodeString(s)
}

// bindReport reads either a JSON body or a multipart form with a "capture"
// file and a "viewport" JSON field.
func bindReport(c *gin.Context) (services.ReportRequest, error) {
	var req services.ReportRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("capture")
		if err != nil {
			return req, fmt.Errorf("capture file is required")
		}
		f, err := file.Open()
		if err != nil {
			return req, err
		}
		defer f.Close()
		if req.Capture, err = io.ReadAll(f); err != nil {
			return req, err
		}
		if vp := c.PostForm("viewport"); vp != "" {
			req.Viewport = &models.Viewport{}
			if err := json.Unmarshal([]byte(vp), req.Viewport); err != nil {
				return req, fmt.Errorf("viewport: %w", err)
			}
		}
		if w := c.PostForm("output_width_mm"); w != "" {
			if req.OutputWidthMM, err = strconv.ParseFloat(w, 64); err != nil {
				return req, fmt.Errorf("output_width_mm: %w", err)
			}
		}
		return req, nil
	}

	var body reportBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return req, err
	}
	capture, err := captureBytes(body.Capture)
	if err != nil {
		return req, fmt.Errorf("capture: %w", err)
	}
	req.Capture = capture
	req.Viewport = body.Viewport
	req.OutputWidthMM = body.OutputWidthMM
	return req, nil
}

func (h *SiteController) report(c *gin.Context, format string) {
	req, err := bindReport(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	features := h.ws.Features()
	out, report, err := h.reports.Generate(features, req, format)
	if err != nil {
		writeError(c, err)
		return
	}
	file := reportFiles[format]
	h.record(models.ExportRecord{
		Format:       format,
		FileName:     file.name,
		FeatureCount: len(features),
		Scale:        report.Scale,
		Size:         len(out),
	})
	c.Header("X-Map-Scale", report.ScaleText())
	c.Header("X-Output-Width-MM", strconv.FormatFloat(report.WidthMM, 'f', -1, 64))
	attachment(c, file.name, file.contentType, out)
}

func (h *SiteController) ReportPDF(c *gin.Context) {
	h.report(c, services.FormatPDF)
}

func (h *SiteController) ReportDocx(c *gin.Context) {
	h.report(c, services.FormatDocx)
}
