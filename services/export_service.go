package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/GrainArc/SiteMeasure/Transformer"
	"github.com/GrainArc/SiteMeasure/methods"
	"github.com/GrainArc/SiteMeasure/models"
)

const (
	ShapefileArchiveName = "polygons.zip"
	DXFFileName          = "polygons.dxf"
	shapefileFolder      = "shapefile"
)

type ExportOptions struct {
	SourceEPSG int
	TargetEPSG int // 0 means same as source
	PrjWKT     string
	Encoding   string
}

type ExportService struct {
	opts    ExportOptions
	metrics *Metrics
}

func NewExportService(opts ExportOptions, metrics *Metrics) *ExportService {
	if opts.SourceEPSG == 0 {
		opts.SourceEPSG = 27700
	}
	if opts.Encoding == "" {
		opts.Encoding = Transformer.DefaultCharset
	}
	return &ExportService{opts: opts, metrics: metrics}
}

// Layers partitions a snapshot into the three GeoJSON collections.
func (s *ExportService) Layers(features []models.Feature) (*Transformer.LayerSet, error) {
	if len(features) == 0 {
		return nil, models.ErrNoGeometry
	}
	if s.opts.TargetEPSG != 0 && s.opts.TargetEPSG != s.opts.SourceEPSG {
		return nil, fmt.Errorf("%w: EPSG:%d to EPSG:%d", models.ErrUnsupportedCRS, s.opts.SourceEPSG, s.opts.TargetEPSG)
	}
	set := Transformer.Partition(features)
	if set.Len() == 0 {
		return nil, models.ErrNoGeometry
	}
	return set, nil
}

// Shapefile writes each non-empty layer as a shapefile set under shapefile/
// and returns the zipped folder.
func (s *ExportService) Shapefile(features []models.Feature) (out []byte, err error) {
	start := time.Now()
	defer func() { s.metrics.Artifact("shapefile", start, err) }()

	set, err := s.Layers(features)
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "export-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	names, err := Transformer.WriteShapefileSet(dir, set, Transformer.ShapefileOptions{
		EPSG:     s.targetEPSG(),
		PrjWKT:   s.opts.PrjWKT,
		Encoding: s.opts.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("write shapefile: %w", err)
	}
	out, err = methods.ZipFileOut(dir, shapefileFolder)
	if err != nil {
		return nil, err
	}
	log.Printf("shapefile export: layers %v, %d bytes", names, len(out))
	return out, nil
}

func (s *ExportService) DXF(features []models.Feature) (out []byte, err error) {
	start := time.Now()
	defer func() { s.metrics.Artifact("dxf", start, err) }()

	set, err := s.Layers(features)
	if err != nil {
		return nil, err
	}
	return methods.GeoJSONToDXFBytes(set.Points, set.Lines, set.Polygons)
}

// Import reads every shapefile in a zip archive into store features.
// Attribute columns other than id are ignored.
func (s *ExportService) Import(archive []byte) ([]models.Feature, error) {
	dir, err := os.MkdirTemp("", "import-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := methods.UnzipBytes(archive, filepath.Join(dir, "in")); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidGeometry, err)
	}
	fc, err := Transformer.ReadShapefileDir(filepath.Join(dir, "in"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidGeometry, err)
	}
	features, err := Transformer.FeaturesFromCollection(fc)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, models.ErrNoGeometry
	}
	return features, nil
}

func (s *ExportService) targetEPSG() int {
	if s.opts.TargetEPSG != 0 {
		return s.opts.TargetEPSG
	}
	return s.opts.SourceEPSG
}
