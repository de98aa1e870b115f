package spatial

import (
	"math"
)

// Projection maps lon/lat onto a pixel canvas with an equirectangular
// projection whose x axis is scaled by cos(lat0) at the box centre.
// Pixel y grows downward.
type Projection struct {
	box   BBox
	kx    float64
	scale float64
	offX  float64
	offY  float64
}

// NewProjection fits box inside a width×height canvas with margin pixels on each side,
// preserving aspect ratio
func NewProjection(box BBox, width, height, margin int) Projection {
	kx := math.Cos(box.Center().Lat * math.Pi / 180)
	if kx < 1e-6 {
		kx = 1e-6
	}
	spanX := (box.MaxLon - box.MinLon) * kx
	spanY := box.MaxLat - box.MinLat
	innerW := float64(width - 2*margin)
	innerH := float64(height - 2*margin)
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}

	scale := math.Inf(1)
	if spanX > 0 {
		scale = innerW / spanX
	}
	if spanY > 0 {
		scale = math.Min(scale, innerH/spanY)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}

	return Projection{
		box:   box,
		kx:    kx,
		scale: scale,
		offX:  float64(margin) + (innerW-spanX*scale)/2,
		offY:  float64(margin) + (innerH-spanY*scale)/2,
	}
}

// Project returns pixel coordinates for p
func (pr Projection) Project(p Point) (x, y float64) {
	x = pr.offX + (p.Lon-pr.box.MinLon)*pr.kx*pr.scale
	y = pr.offY + (pr.box.MaxLat-p.Lat)*pr.scale
	return x, y
}
