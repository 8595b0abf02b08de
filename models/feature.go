package models

import (
	"github.com/paulmach/orb"
)

// GeometryKind is the shape type of a drawn feature.
type GeometryKind string

const (
	KindPolygon  GeometryKind = "Polygon"
	KindPolyline GeometryKind = "Polyline"
	KindPoint    GeometryKind = "Point"
)

// Valid reports whether k is one of the supported kinds.
func (k GeometryKind) Valid() bool {
	switch k {
	case KindPolygon, KindPolyline, KindPoint:
		return true
	}
	return false
}

// MinVertices is the smallest vertex count a feature of this kind may hold.
func (k GeometryKind) MinVertices() int {
	switch k {
	case KindPolygon:
		return 3
	case KindPolyline:
		return 2
	default:
		return 1
	}
}

// Feature is one drawn shape. Polygon rings are stored open: Closed is set
// and the first vertex is never repeated at the end.
type Feature struct {
	ID       string       `json:"id"`
	Kind     GeometryKind `json:"kind"`
	Vertices []orb.Point  `json:"vertices"`
	Closed   bool         `json:"closed"`
}

// Clone returns a deep copy so callers never share vertex slices with the store.
func (f Feature) Clone() Feature {
	out := f
	out.Vertices = append([]orb.Point(nil), f.Vertices...)
	return out
}

// Segments derives the segment list; polygons wrap from the last vertex to the first.
func (f Feature) Segments() [][2]int {
	n := len(f.Vertices)
	if n < 2 {
		return nil
	}
	count := n - 1
	if f.Closed {
		count = n
	}
	out := make([][2]int, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, [2]int{i, (i + 1) % n})
	}
	return out
}

// Viewport is the visible map extent in CRS units plus its pixel size.
type Viewport struct {
	MinX        float64 `json:"min_x"`
	MinY        float64 `json:"min_y"`
	MaxX        float64 `json:"max_x"`
	MaxY        float64 `json:"max_y"`
	PixelWidth  int     `json:"pixel_width"`
	PixelHeight int     `json:"pixel_height"`
}

// BottomLeft and BottomRight are the corners used for scale inference.
func (v Viewport) BottomLeft() orb.Point  { return orb.Point{v.MinX, v.MinY} }
func (v Viewport) BottomRight() orb.Point { return orb.Point{v.MaxX, v.MinY} }

// Empty reports a viewport with no ground extent.
func (v Viewport) Empty() bool {
	return !(v.MaxX > v.MinX) || !(v.MaxY > v.MinY)
}
