package methods

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"
)

const (
	dxfLayerPoints   = "Points"
	dxfLayerLines    = "Lines"
	dxfLayerPolygons = "Polygons"
	dxfLayerLabels   = "Labels"
	dxfLabelHeight   = 2.5
)

func lwPolyline(pts []orb.Point) *entity.LwPolyline {
	lwp := entity.NewLwPolyline(len(pts))
	for j, pt := range pts {
		lwp.Vertices[j] = []float64{pt[0], pt[1]}
	}
	return lwp
}

// label writes the vertex names A, B, ... next to each point of a feature.
func label(d *drawing.Drawing, pts []orb.Point) error {
	if err := d.ChangeLayer(dxfLayerLabels); err != nil {
		return err
	}
	for i, pt := range pts {
		if _, err := d.Text(PointName(i), pt[0], pt[1], 0, dxfLabelHeight); err != nil {
			return err
		}
	}
	return nil
}

// ConvertGeoJSONToDXF draws each collection on its own layer, polygons as
// closed polylines, and labels the vertices.
func ConvertGeoJSONToDXF(outputFilename string, collections ...*geojson.FeatureCollection) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0
	d.AddLayer(dxfLayerPoints, color.Blue, dxf.DefaultLineType, true)
	d.AddLayer(dxfLayerLines, color.Green, dxf.DefaultLineType, true)
	d.AddLayer(dxfLayerPolygons, color.Red, dxf.DefaultLineType, true)
	d.AddLayer(dxfLayerLabels, color.White, dxf.DefaultLineType, true)

	for _, fc := range collections {
		if fc == nil {
			continue
		}
		for _, feature := range fc.Features {
			var vertices []orb.Point
			switch geom := feature.Geometry.(type) {
			case orb.Point:
				d.ChangeLayer(dxfLayerPoints)
				if _, err := d.Point(geom[0], geom[1], 0); err != nil {
					return err
				}
				vertices = []orb.Point{geom}
			case orb.LineString:
				d.ChangeLayer(dxfLayerLines)
				d.AddEntity(lwPolyline(geom))
				vertices = geom
			case orb.Polygon:
				if len(geom) == 0 {
					continue
				}
				d.ChangeLayer(dxfLayerPolygons)
				d.AddEntity(lwPolyline(geom[0]))
				vertices = StripClosingVertex(geom[0])
			default:
				log.Printf("dxf: unsupported geometry type %T", geom)
				continue
			}
			if err := label(d, vertices); err != nil {
				return fmt.Errorf("dxf labels: %w", err)
			}
		}
	}

	if err := d.SaveAs(outputFilename); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(outputFilename), err)
	}
	return nil
}

// GeoJSONToDXFBytes renders the collections through a scratch file.
func GeoJSONToDXFBytes(collections ...*geojson.FeatureCollection) ([]byte, error) {
	dir, err := os.MkdirTemp("", "dxf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "polygons.dxf")
	if err := ConvertGeoJSONToDXF(path, collections...); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
