package views

import (
	"github.com/gin-gonic/gin"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/GrainArc/SiteMeasure/response"
	"github.com/GrainArc/SiteMeasure/services"
)

// SiteController serves the single shared workspace and everything derived
// from it.
type SiteController struct {
	ws       *services.Workspace
	reports  *services.ReportService
	exports  *services.ExportService
	drawings *services.DrawingService
}

func NewSiteController(ws *services.Workspace, reports *services.ReportService, exports *services.ExportService, drawings *services.DrawingService) *SiteController {
	return &SiteController{ws: ws, reports: reports, exports: exports, drawings: drawings}
}

func (h *SiteController) Features(c *gin.Context) {
	response.Success(c, h.ws.Features())
}

func (h *SiteController) Feature(c *gin.Context) {
	f, err := h.ws.Feature(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, f)
}

func (h *SiteController) RemoveFeature(c *gin.Context) {
	if err := h.ws.Remove(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "removed", nil)
}

func (h *SiteController) ClearFeatures(c *gin.Context) {
	if err := h.ws.Clear(); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "cleared", nil)
}

func (h *SiteController) Mode(c *gin.Context) {
	response.Success(c, h.ws.State())
}

func (h *SiteController) StartDraw(c *gin.Context) {
	var body struct {
		Kind models.GeometryKind `json:"kind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.ws.StartDraw(body.Kind); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, h.ws.State())
}

func (h *SiteController) PreviewDraw(c *gin.Context) {
	var body verticesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.ws.PreviewDraw(body.Vertices); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, h.ws.Snapshot())
}

func (h *SiteController) EndDraw(c *gin.Context) {
	var body verticesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	f, err := h.ws.EndDraw(body.Vertices)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, f)
}

func (h *SiteController) CancelDraw(c *gin.Context) {
	if err := h.ws.CancelDraw(); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, h.ws.State())
}

func (h *SiteController) StartModify(c *gin.Context) {
	var body struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.ws.StartModify(body.ID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, h.ws.State())
}

func (h *SiteController) EndModify(c *gin.Context) {
	var body verticesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	f, err := h.ws.EndModify(body.Vertices)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, f)
}

func (h *SiteController) CancelModify(c *gin.Context) {
	if err := h.ws.CancelModify(); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, h.ws.State())
}

func (h *SiteController) Labels(c *gin.Context) {
	response.Success(c, h.ws.Labels())
}

func (h *SiteController) Table(c *gin.Context) {
	response.Success(c, h.ws.Table())
}
