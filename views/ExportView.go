package views

import (
	"io"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/GrainArc/SiteMeasure/response"
	"github.com/GrainArc/SiteMeasure/services"
)

func (h *SiteController) record(rec models.ExportRecord) {
	if err := h.drawings.RecordExport(rec); err != nil {
		log.Printf("export log: %v", err)
	}
}

func (h *SiteController) ExportGeoJSON(c *gin.Context) {
	features := h.ws.Features()
	set, err := h.exports.Layers(features)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, set)
}

func (h *SiteController) ExportShapefile(c *gin.Context) {
	features := h.ws.Features()
	out, err := h.exports.Shapefile(features)
	if err != nil {
		writeError(c, err)
		return
	}
	h.record(models.ExportRecord{Format: "shapefile", FileName: services.ShapefileArchiveName, FeatureCount: len(features), Size: len(out)})
	attachment(c, services.ShapefileArchiveName, "application/zip", out)
}

func (h *SiteController) ExportDXF(c *gin.Context) {
	features := h.ws.Features()
	out, err := h.exports.DXF(features)
	if err != nil {
		writeError(c, err)
		return
	}
	h.record(models.ExportRecord{Format: "dxf", FileName: services.DXFFileName, FeatureCount: len(features), Size: len(out)})
	attachment(c, services.DXFFileName, "application/dxf", out)
}

// ImportShapefile appends the features of an uploaded zip. With replace=true
// the store is cleared first.
func (h *SiteController) ImportShapefile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	features, err := h.exports.Import(data)
	if err != nil {
		writeError(c, err)
		return
	}
	if c.Query("replace") == "true" {
		err = h.ws.ReplaceAll("import", features)
		features = h.ws.Features()
	} else {
		features, err = h.ws.AppendAll("import", features)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "imported", features)
}

func (h *SiteController) Exports(c *gin.Context) {
	recs, err := h.drawings.Exports(50)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, recs)
}
