package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GrainArc/SiteMeasure/config"
	"github.com/GrainArc/SiteMeasure/models"
	"github.com/GrainArc/SiteMeasure/routers"
	"github.com/GrainArc/SiteMeasure/services"
	"github.com/GrainArc/SiteMeasure/tile_proxy"
)

func main() {
	configPath := flag.String("config", "config.xml", "path to config.xml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := config.OpenDB(cfg, models.AllModels()...)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	metrics, err := services.NewMetrics(nil)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	proxy := tile_proxy.NewUpstreamProxy(tile_proxy.Options{
		ServiceURL:        cfg.ServiceURL,
		PlacesURL:         cfg.PlacesURL,
		ReferenceLayerURL: cfg.ReferenceLayerURL,
		APIKey:            cfg.APIKey,
		CacheTTL:          cfg.CacheDuration(),
		Timeout:           cfg.TimeoutDuration(),
	})
	defer proxy.Close()

	gin.SetMode(gin.ReleaseMode)
	engine := routers.NewEngine(routers.Deps{
		Workspace: services.NewWorkspace(metrics),
		Reports:   services.NewReportService(cfg.OutputWidthMM, metrics),
		Exports: services.NewExportService(services.ExportOptions{
			SourceEPSG: cfg.EPSG,
			TargetEPSG: cfg.TargetEPSG,
			PrjWKT:     cfg.PrjWKT,
			Encoding:   cfg.DBFEncoding,
		}, metrics),
		Drawings: services.NewDrawingService(db),
		Proxy:    proxy,
		Metrics:  metrics,
	})

	srv := &http.Server{Addr: cfg.MainRouter, Handler: engine}
	go func() {
		log.Printf("listening on %s", cfg.MainRouter)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
