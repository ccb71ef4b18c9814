package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKnownPoints(t *testing.T) {
	a := Point{Lat: 40.0000, Lng: -74.0000}
	b := Point{Lat: 40.0090, Lng: -74.0000}

	d := Distance(a, b)
	assert.InDelta(t, 1.0, d, 0.01)
	assert.InDelta(t, d, Distance(b, a), 1e-12)
	assert.Equal(t, 0.0, Distance(a, a))
}

func TestWithinRadiusIncludesAndExcludes(t *testing.T) {
	issue := Point{Lat: 40.0000, Lng: -74.0000}
	center := Point{Lat: 40.0090, Lng: -74.0000}
	self := func(p Point) Point { return p }

	within := WithinRadius([]Point{issue}, center, 5, self)
	require.Len(t, within, 1)
	assert.InDelta(t, 1.0, within[0].Distance, 0.01)

	assert.Empty(t, WithinRadius([]Point{issue}, center, 0.5, self))
}

func TestWithinRadiusSortsNearestFirst(t *testing.T) {
	center := Point{Lat: 51.5, Lng: -0.12}
	points := []Point{
		{Lat: 51.53, Lng: -0.12},
		{Lat: 51.50, Lng: -0.12},
		{Lat: 51.51, Lng: -0.12},
		{Lat: 52.50, Lng: -0.12},
	}

	got := WithinRadius(points, center, 10, func(p Point) Point { return p })
	require.Len(t, got, 3)
	assert.Equal(t, points[1], got[0].Item)
	assert.Equal(t, points[2], got[1].Item)
	assert.Equal(t, points[0], got[2].Item)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
}

func TestZeroRadiusKeepsOnlyCoincidentPoints(t *testing.T) {
	center := Point{Lat: 10, Lng: 10}
	points := []Point{{Lat: 10, Lng: 10}, {Lat: 10.0001, Lng: 10}}

	got := WithinRadius(points, center, 0, func(p Point) Point { return p })
	require.Len(t, got, 1)
	assert.Equal(t, center, got[0].Item)

	box := BoundingBox(center, 0)
	assert.True(t, box.Contains(center))
	assert.False(t, box.Contains(points[1]))
}

func TestBoundingBoxWindow(t *testing.T) {
	box := BoundingBox(Point{Lat: 0, Lng: 0}, 111)
	assert.InDelta(t, -1, box.MinLat, 1e-9)
	assert.InDelta(t, 1, box.MaxLat, 1e-9)
	require.Len(t, box.LngRanges, 1)
	assert.InDelta(t, -1, box.LngRanges[0].Min, 1e-9)
	assert.InDelta(t, 1, box.LngRanges[0].Max, 1e-9)

	box = BoundingBox(Point{Lat: 60, Lng: 0}, 111)
	assert.InDelta(t, 2, box.LngRanges[0].Max, 1e-6)
}

func TestBoundingBoxAtPoles(t *testing.T) {
	for _, lat := range []float64{90, -90} {
		box := BoundingBox(Point{Lat: lat, Lng: 0}, 5)
		assert.True(t, box.AllLongitudes)
		assert.False(t, math.IsNaN(box.MinLat))
		assert.False(t, math.IsInf(box.MaxLat, 0))
		assert.True(t, box.Contains(Point{Lat: lat, Lng: 179}))
	}

	// near-pole with a big radius covers every longitude as well
	box := BoundingBox(Point{Lat: 89.99, Lng: 0}, 50)
	assert.True(t, box.AllLongitudes)
}

func TestBoundingBoxReachingPoleKeepsFarSide(t *testing.T) {
	center := Point{Lat: 89.5, Lng: 0}
	across := Point{Lat: 89.7, Lng: 180}
	require.Less(t, Distance(center, across), 100.0)

	box := BoundingBox(center, 100)
	assert.True(t, box.AllLongitudes)
	assert.True(t, box.Contains(across))

	got := WithinRadius([]Point{across}, center, 100, func(p Point) Point { return p })
	assert.Len(t, got, 1)

	// a circle that stops short of the pole still narrows longitude
	box = BoundingBox(Point{Lat: 80, Lng: 0}, 100)
	assert.False(t, box.AllLongitudes)
}

func TestBoundingBoxAcrossAntimeridian(t *testing.T) {
	box := BoundingBox(Point{Lat: 0, Lng: 179.9}, 50)
	require.Len(t, box.LngRanges, 2)
	assert.True(t, box.Contains(Point{Lat: 0, Lng: -179.9}))
	assert.True(t, box.Contains(Point{Lat: 0, Lng: 179.95}))
	assert.False(t, box.Contains(Point{Lat: 0, Lng: 170}))

	got := WithinRadius([]Point{{Lat: 0, Lng: -179.9}}, Point{Lat: 0, Lng: 179.9}, 50, func(p Point) Point { return p })
	require.Len(t, got, 1)
	assert.InDelta(t, 22.2, got[0].Distance, 0.1)
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 90, Lng: -180}.Valid())
	assert.False(t, Point{Lat: 90.1, Lng: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lng: 180.5}.Valid())
}
