package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GrainArc/SiteMeasure/tile_proxy"
	"github.com/GrainArc/SiteMeasure/views"
)

func SiteRouters(r *gin.Engine, site *views.SiteController, proxy *tile_proxy.UpstreamProxy) {
	api := r.Group("/api")
	{
		api.GET("/features", site.Features)
		api.GET("/features/:id", site.Feature)
		api.DELETE("/features", site.ClearFeatures)
		api.DELETE("/features/:id", site.RemoveFeature)
		api.GET("/mode", site.Mode)
		api.GET("/labels", site.Labels)
		api.GET("/table", site.Table)
		api.GET("/live", site.Live)
	}
	{
		api.POST("/draw/start", site.StartDraw)
		api.POST("/draw/preview", site.PreviewDraw)
		api.POST("/draw/end", site.EndDraw)
		api.POST("/draw/cancel", site.CancelDraw)

		api.POST("/modify/start", site.StartModify)
		api.POST("/modify/end", site.EndModify)
		api.POST("/modify/cancel", site.CancelModify)
	}
	{
		api.POST("/report/pdf", site.ReportPDF)
		api.POST("/report/docx", site.ReportDocx)

		api.GET("/export/geojson", site.ExportGeoJSON)
		api.GET("/export/shapefile", site.ExportShapefile)
		api.GET("/export/dxf", site.ExportDXF)
		api.GET("/exports", site.Exports)
		api.POST("/import/shapefile", site.ImportShapefile)
	}
	{
		api.POST("/drawings", site.SaveDrawing)
		api.GET("/drawings", site.ListDrawings)
		api.GET("/drawings/:id", site.GetDrawing)
		api.POST("/drawings/:id/load", site.LoadDrawing)
		api.DELETE("/drawings/:id", site.DeleteDrawing)
	}
	if proxy != nil {
		proxy.RegisterRoutes(api)
	}
}

// OpsRouters exposes health and prometheus metrics.
func OpsRouters(r *gin.Engine, gatherer prometheus.Gatherer) {
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
