package routers

import (
	"github.com/gin-gonic/gin"

	"github.com/GrainArc/SiteMeasure/services"
	"github.com/GrainArc/SiteMeasure/tile_proxy"
	"github.com/GrainArc/SiteMeasure/views"
)

// Deps are the long-lived services behind the HTTP surface.
type Deps struct {
	Workspace *services.Workspace
	Reports   *services.ReportService
	Exports   *services.ExportService
	Drawings  *services.DrawingService
	Proxy     *tile_proxy.UpstreamProxy
	Metrics   *services.Metrics
}

func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	site := views.NewSiteController(d.Workspace, d.Reports, d.Exports, d.Drawings)
	SiteRouters(r, site, d.Proxy)
	OpsRouters(r, d.Metrics.Gatherer())
	return r
}
