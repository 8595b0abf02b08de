package methods

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/stat"
)

const squareMetresPerHectare = 10000.0

// Distance is the planar distance between two projected points.
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// StripClosingVertex drops a trailing vertex equal to the first one.
func StripClosingVertex(pts []orb.Point) []orb.Point {
	if len(pts) > 1 && pts[0].Equal(pts[len(pts)-1]) {
		return pts[:len(pts)-1]
	}
	return pts
}

// DropRepeats removes consecutive duplicate vertices.
func DropRepeats(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p.Equal(out[len(out)-1]) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// RingArea returns the unsigned shoelace area of a ring, closed or not.
func RingArea(ring []orb.Point) float64 {
	pts := StripClosingVertex(ring)
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return math.Abs(sum) / 2
}

func SquareMetresToHectares(m2 float64) float64 {
	return m2 / squareMetresPerHectare
}

func Midpoint(a, b orb.Point) orb.Point {
	return orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

// Perimeter sums segment lengths; closed adds the wrap from last to first.
func Perimeter(pts []orb.Point, closed bool) float64 {
	pts = StripClosingVertex(pts)
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	if closed && len(pts) > 2 {
		total += Distance(pts[len(pts)-1], pts[0])
	}
	return total
}

// Centroid is the arithmetic mean of the distinct vertices, not the area centroid.
func Centroid(pts []orb.Point) orb.Point {
	pts = StripClosingVertex(pts)
	if len(pts) == 0 {
		return orb.Point{}
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p[0], p[1]
	}
	return orb.Point{stat.Mean(xs, nil), stat.Mean(ys, nil)}
}

// ScaleDenominator converts a ground width in metres printed at outputWidthMM
// into the n of a 1:n ratio.
func ScaleDenominator(groundWidth, outputWidthMM float64) int64 {
	if outputWidthMM <= 0 {
		return 0
	}
	return int64(math.Round(groundWidth * 1000 / outputWidthMM))
}

// PointName maps 0,1,..25,26,27 to A,B,..Z,AA,AB.
func PointName(i int) string {
	var buf []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

// Finite reports whether every coordinate is a real number.
func Finite(pts []orb.Point) bool {
	for _, p := range pts {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return false
		}
	}
	return true
}
