package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBBox_ExtendUnionPad(t *testing.T) {
	box := EmptyBBox()
	assert.True(t, box.IsEmpty())

	box = box.Extend(Point{-100, 38}).Extend(Point{-98, 39})
	assert.Equal(t, BBox{-100, 38, -98, 39}, box)

	u := box.Union(BBox{-102, 37, -101, 37.5})
	assert.Equal(t, BBox{-102, 37, -98, 39}, u)
	assert.Equal(t, box, box.Union(EmptyBBox()))

	padded := box.Pad(0.5)
	assert.InDelta(t, -101, padded.MinLon, 1e-12)
	assert.InDelta(t, 39.5, padded.MaxLat, 1e-12)

	single := EmptyBBox().Extend(Point{-99, 38}).Pad(0.1)
	assert.False(t, single.MinLon == single.MaxLon)
}

func TestBoundary_Bounds(t *testing.T) {
	b := &Boundary{Polygons: []Polygon{
		{Ring{{-100, 37}, {-99, 37}, {-99, 38}, {-100, 37}}},
		{Ring{{-95, 39}, {-94, 39}, {-94, 40}, {-95, 39}}},
	}}
	assert.Equal(t, BBox{-100, 37, -94, 40}, b.Bounds())

	var nilBoundary *Boundary
	assert.True(t, nilBoundary.Bounds().IsEmpty())
}

func TestProjection_CornersAndAspect(t *testing.T) {
	box := BBox{-102, 37, -94, 40}
	pr := NewProjection(box, 800, 400, 10)

	x0, y0 := pr.Project(Point{box.MinLon, box.MaxLat})
	x1, y1 := pr.Project(Point{box.MaxLon, box.MinLat})

	// north-west corner is up-left of south-east
	assert.Less(t, x0, x1)
	assert.Less(t, y0, y1)
	for _, v := range []float64{x0, x1} {
		assert.GreaterOrEqual(t, v, 10.0-1e-9)
		assert.LessOrEqual(t, v, 790.0+1e-9)
	}
	for _, v := range []float64{y0, y1} {
		assert.GreaterOrEqual(t, v, 10.0-1e-9)
		assert.LessOrEqual(t, v, 390.0+1e-9)
	}

	// x extent is compressed by cos(lat0) relative to y
	kx := math.Cos(38.5 * math.Pi / 180)
	ratio := (x1 - x0) / (y1 - y0)
	assert.InDelta(t, 8*kx/3, ratio, 1e-9)
}

func TestProjection_DegenerateBox(t *testing.T) {
	pr := NewProjection(BBox{-99, 38, -99, 38}, 100, 100, 0)
	x, y := pr.Project(Point{-99, 38})
	assert.False(t, math.IsNaN(x) || math.IsNaN(y))
}

func TestPoint_Valid(t *testing.T) {
	assert.True(t, Point{-99.5, 38.2}.Valid())
	assert.False(t, Point{math.NaN(), 38}.Valid())
	assert.False(t, Point{-200, 38}.Valid())
}
