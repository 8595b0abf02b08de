package Transformer

import (
	"fmt"
	"os"
	"path/filepath"

	"gitee.com/LJ_COOL/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/encoding"

	"github.com/GrainArc/SiteMeasure/models"
)

// ShapefileOptions controls the sidecar files written with every layer.
type ShapefileOptions struct {
	EPSG     int
	PrjWKT   string // overrides the built-in WKT for EPSG
	Encoding string // DBF code page, written to .cpg
}

// DBF attribute columns, in order.
var shpFields = []struct {
	name string
	size uint8
}{
	{"id", 64},
	{"kind", 16},
	{"length_m", 24},
	{"area_ha", 24},
}

var shapeTypes = map[models.GeometryKind]shp.ShapeType{
	models.KindPoint:    shp.POINT,
	models.KindPolyline: shp.POLYLINE,
	models.KindPolygon:  shp.POLYGON,
}

var prjWKT = map[int]string{
	27700: `PROJCS["British_National_Grid",GEOGCS["GCS_OSGB_1936",DATUM["D_OSGB_1936",SPHEROID["Airy_1849",6377563.396,299.3249646]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],PARAMETER["False_Easting",400000.0],PARAMETER["False_Northing",-100000.0],PARAMETER["Central_Meridian",-2.0],PARAMETER["Scale_Factor",0.9996012717],PARAMETER["Latitude_Of_Origin",49.0],UNIT["Meter",1.0]]`,
	3857:  `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Mercator_Auxiliary_Sphere"],PARAMETER["False_Easting",0.0],PARAMETER["False_Northing",0.0],PARAMETER["Central_Meridian",0.0],PARAMETER["Standard_Parallel_1",0.0],PARAMETER["Auxiliary_Sphere_Type",0.0],UNIT["Meter",1.0]]`,
	4326:  `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`,
}

// ProjectionWKT returns the ESRI WKT for an EPSG code, or false if none is known.
func ProjectionWKT(epsg int) (string, bool) {
	wkt, ok := prjWKT[epsg]
	return wkt, ok
}

func writeSidecar(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func attributeText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return trimTrailingZeros(fmt.Sprintf("%f", t))
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toShpPoints(pts []orb.Point) []shp.Point {
	out := make([]shp.Point, len(pts))
	for i, pt := range pts {
		out[i] = shp.Point{X: pt[0], Y: pt[1]}
	}
	return out
}

func reversed(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

func shapeOf(g orb.Geometry) (shp.Shape, error) {
	switch geom := g.(type) {
	case orb.Point:
		return &shp.Point{X: geom[0], Y: geom[1]}, nil
	case orb.LineString:
		return shp.NewPolyLine([][]shp.Point{toShpPoints(geom)}), nil
	case orb.Polygon:
		var parts [][]shp.Point
		for i, ring := range geom {
			// outer rings clockwise, holes counter-clockwise
			if IsClockwise(ring) != (i == 0) {
				ring = reversed(ring)
			}
			parts = append(parts, toShpPoints(ring))
		}
		// polygon records share the polyline layout
		return shp.NewPolyLine(parts), nil
	}
	return nil, fmt.Errorf("%w: cannot write %T", models.ErrInvalidGeometry, g)
}

// WriteShapefileLayer writes one collection as name.shp/.shx/.dbf/.prj/.cpg in dir.
func WriteShapefileLayer(dir, name string, kind models.GeometryKind, fc *geojson.FeatureCollection, opt ShapefileOptions) error {
	shapeType, ok := shapeTypes[kind]
	if !ok {
		return fmt.Errorf("%w: kind %q", models.ErrInvalidGeometry, kind)
	}
	charset := opt.Encoding
	if charset == "" {
		charset = DefaultCharset
	}
	enc := Charset(charset)

	base := filepath.Join(dir, name)
	w, err := shp.Create(base+".shp", shapeType)
	if err != nil {
		return fmt.Errorf("create %s.shp: %w", name, err)
	}
	fields := make([]shp.Field, len(shpFields))
	for i, f := range shpFields {
		fields[i] = shp.StringField(EncodeText(enc, f.name), f.size)
	}
	w.SetFields(fields)

	werr := writeRecords(w, fc, enc)
	w.Close()
	if werr != nil {
		return fmt.Errorf("write %s.shp: %w", name, werr)
	}

	if err := writeSidecar(base+".cpg", charset); err != nil {
		return err
	}
	wkt := opt.PrjWKT
	if wkt == "" {
		wkt, _ = ProjectionWKT(opt.EPSG)
	}
	if wkt != "" {
		if err := writeSidecar(base+".prj", wkt); err != nil {
			return err
		}
	}
	return nil
}

func writeRecords(w *shp.Writer, fc *geojson.FeatureCollection, enc encoding.Encoding) error {
	for row, feature := range fc.Features {
		shape, err := shapeOf(feature.Geometry)
		if err != nil {
			return err
		}
		w.Write(shape)
		for i, f := range shpFields {
			value := EncodeText(enc, attributeText(feature.Properties[f.name]))
			if err := w.WriteAttribute(row, i, value); err != nil {
				return fmt.Errorf("attribute %s row %d: %w", f.name, row, err)
			}
		}
	}
	return nil
}

// WriteShapefileSet writes every non-empty layer of set into dir and returns
// the layer names written.
func WriteShapefileSet(dir string, set *LayerSet, opt ShapefileOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var names []string
	for _, l := range set.Layers() {
		if err := WriteShapefileLayer(dir, l.Name, l.Kind, l.Collection, opt); err != nil {
			return names, err
		}
		names = append(names, l.Name)
	}
	return names, nil
}
