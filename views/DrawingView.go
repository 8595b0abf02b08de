package views

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GrainArc/SiteMeasure/response"
)

func drawingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid drawing id")
		return 0, false
	}
	return uint(id), true
}

func (h *SiteController) SaveDrawing(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	d, err := h.drawings.Save(body.Name, h.ws.Features())
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "saved", gin.H{
		"id":            d.ID,
		"name":          d.Name,
		"feature_count": len(d.Features),
		"created_at":    d.CreatedAt,
	})
}

func (h *SiteController) ListDrawings(c *gin.Context) {
	items, err := h.drawings.List()
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *SiteController) GetDrawing(c *gin.Context) {
	id, ok := drawingID(c)
	if !ok {
		return
	}
	features, err := h.drawings.Load(id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, features)
}

// LoadDrawing replaces the workspace with a saved drawing.
func (h *SiteController) LoadDrawing(c *gin.Context) {
	id, ok := drawingID(c)
	if !ok {
		return
	}
	features, err := h.drawings.Load(id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.ws.ReplaceAll("load", features); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "loaded", h.ws.Features())
}

func (h *SiteController) DeleteDrawing(c *gin.Context) {
	id, ok := drawingID(c)
	if !ok {
		return
	}
	if err := h.drawings.Delete(id); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "deleted", nil)
}
