package views

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	"github.com/GrainArc/SiteMeasure/models"
	"github.com/GrainArc/SiteMeasure/response"
)

// verticesBody is the payload of every draw and modify event.
type verticesBody struct {
	Vertices []orb.Point `json:"vertices"`
}

// writeError maps service errors onto the response envelope.
func writeError(c *gin.Context, err error) {
	var upstream *models.UpstreamError
	switch {
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, models.ErrModeConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, models.ErrInvalidGeometry),
		errors.Is(err, models.ErrNoGeometry),
		errors.Is(err, models.ErrCaptureFailure),
		errors.Is(err, models.ErrReportOverflow),
		errors.Is(err, models.ErrUnsupportedCRS):
		response.Unprocessable(c, err.Error())
	case errors.As(err, &upstream):
		response.Error(c, upstream.Status, upstream.Body)
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		response.InternalError(c, err.Error())
	}
}

// attachment sends an artifact as a download.
func attachment(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(200, contentType, data)
}
