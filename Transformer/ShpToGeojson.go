package Transformer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gitee.com/LJ_COOL/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/encoding"
)

var numericRegex = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// trimTrailingZeros shortens DBF numeric text: "12.300000" becomes "12.3",
// at most five decimals are kept.
func trimTrailingZeros(input string) string {
	if !numericRegex.MatchString(input) || !strings.Contains(input, ".") {
		return input
	}
	parts := strings.SplitN(input, ".", 2)
	frac := strings.TrimRight(parts[1], "0")
	if frac == "" {
		return parts[0]
	}
	if len(frac) > 5 {
		frac = frac[:5]
	}
	return parts[0] + "." + frac
}

func SplitPoints(points []shp.Point, parts []int32) [][]shp.Point {
	var rings [][]shp.Point
	for i, start := range parts {
		end := int32(len(points))
		if i < len(parts)-1 {
			end = parts[i+1]
		}
		rings = append(rings, points[start:end])
	}
	return rings
}

// IsClockwise reports the winding of a closed ring; shapefile outer rings are clockwise.
func IsClockwise(points []orb.Point) bool {
	sum := 0.0
	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		sum += (p2[0] - p1[0]) * (p2[1] + p1[1])
	}
	return sum > 0
}

func toOrbPoints(pts []shp.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}

// polygonGeometry groups rings into polygons: every clockwise ring starts a
// new polygon and the counter-clockwise rings after it are its holes.
func polygonGeometry(points []shp.Point, parts []int32) orb.Geometry {
	var mp orb.MultiPolygon
	for _, part := range SplitPoints(points, parts) {
		ring := orb.Ring(toOrbPoints(part))
		if IsClockwise(ring) || len(mp) == 0 {
			mp = append(mp, orb.Polygon{ring})
			continue
		}
		mp[len(mp)-1] = append(mp[len(mp)-1], ring)
	}
	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}

func lineGeometry(points []shp.Point, parts []int32) orb.Geometry {
	if len(parts) <= 1 {
		return orb.LineString(toOrbPoints(points))
	}
	var mls orb.MultiLineString
	for _, part := range SplitPoints(points, parts) {
		mls = append(mls, orb.LineString(toOrbPoints(part)))
	}
	return mls
}

// readCPGEncoding returns the code page from the .cpg next to the shapefile,
// or "" when there is none.
func readCPGEncoding(shpPath string) string {
	cpgPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".cpg"
	content, err := os.ReadFile(cpgPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}

type rawRecord struct {
	geom  orb.Geometry
	attrs map[string]string
}

// ReadShapefile converts one shapefile to GeoJSON. DBF text is decoded with
// the .cpg code page, or a detected one when the .cpg is missing.
func ReadShapefile(shpPath string) (*geojson.FeatureCollection, error) {
	shape, err := shp.Open(shpPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(shpPath), err)
	}
	defer shape.Close()

	fields := shape.Fields()
	var records []rawRecord
	var sample bytes.Buffer
	for shape.Next() {
		n, p := shape.Shape()
		var geom orb.Geometry
		switch s := p.(type) {
		case *shp.Point:
			geom = orb.Point{s.X, s.Y}
		case *shp.PointZ:
			geom = orb.Point{s.X, s.Y}
		case *shp.PointM:
			geom = orb.Point{s.X, s.Y}
		case *shp.PolyLine:
			geom = lineGeometry(s.Points, s.Parts)
		case *shp.PolyLineZ:
			geom = lineGeometry(s.Points, s.Parts)
		case *shp.PolyLineM:
			geom = lineGeometry(s.Points, s.Parts)
		case *shp.Polygon:
			geom = polygonGeometry(s.Points, s.Parts)
		case *shp.PolygonZ:
			geom = polygonGeometry(s.Points, s.Parts)
		case *shp.PolygonM:
			geom = polygonGeometry(s.Points, s.Parts)
		default:
			continue
		}
		attrs := make(map[string]string, len(fields))
		for k, f := range fields {
			v := shape.ReadAttribute(n, k)
			attrs[f.String()] = v
			sample.WriteString(v)
		}
		records = append(records, rawRecord{geom: geom, attrs: attrs})
	}

	charset := readCPGEncoding(shpPath)
	if charset == "" {
		charset = DetectCharset(sample.Bytes())
	}
	enc := Charset(charset)

	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		feature := geojson.NewFeature(r.geom)
		feature.Properties = decodeAttributes(r.attrs, enc)
		fc.Append(feature)
	}
	return fc, nil
}

func decodeAttributes(raw map[string]string, enc encoding.Encoding) geojson.Properties {
	props := make(geojson.Properties, len(raw))
	for k, v := range raw {
		name := strings.TrimRight(DecodeText(enc, k), "\x00 ")
		props[name] = trimTrailingZeros(strings.TrimSpace(DecodeText(enc, v)))
	}
	return props
}

// ReadShapefileDir reads every shapefile below root in path order.
func ReadShapefileDir(root string) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, path := range FindFiles(root, "shp") {
		layer, err := ReadShapefile(path)
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, layer.Features...)
	}
	return fc, nil
}
