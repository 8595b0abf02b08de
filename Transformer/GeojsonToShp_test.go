package Transformer

import (
	"testing"

	"gitee.com/LJ_COOL/go-shp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shpRing(pts []shp.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}

func TestShapeOfOrientsPolygonRings(t *testing.T) {
	ccw := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	hole := orb.Ring{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}}
	require.False(t, IsClockwise(ccw))
	require.True(t, IsClockwise(hole))

	shape, err := shapeOf(orb.Polygon{ccw, hole})
	require.NoError(t, err)
	line, ok := shape.(*shp.PolyLine)
	require.True(t, ok)
	require.Equal(t, []int32{0, 5}, line.Parts)

	assert.True(t, IsClockwise(shpRing(line.Points[:5])))
	assert.False(t, IsClockwise(shpRing(line.Points[5:])))
	assert.Equal(t, orb.Point{0, 0}, ccw[0], "input ring is left untouched")
	assert.Equal(t, orb.Point{10, 0}, ccw[1])
}
