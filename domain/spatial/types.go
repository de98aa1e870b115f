package spatial

import (
	"math"
)

// CRS84 is the only coordinate reference system handled: WGS84 lon/lat degrees
const CRS84 = "EPSG:4326"

// Point is a longitude/latitude pair in degrees
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the point is finite and inside WGS84 bounds
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lon) && !math.IsNaN(p.Lat) &&
		p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// Ring is a closed or open linear ring
type Ring []Point

// Polygon is an outer ring followed by zero or more holes
type Polygon []Ring

// Boundary is a named multipolygon outline
type Boundary struct {
	Name     string    `json:"name"`
	Polygons []Polygon `json:"polygons"`
}

// Bounds returns the bounding box of every ring in the boundary
func (b *Boundary) Bounds() BBox {
	box := EmptyBBox()
	if b == nil {
		return box
	}
	for _, poly := range b.Polygons {
		for _, ring := range poly {
			for _, p := range ring {
				box = box.Extend(p)
			}
		}
	}
	return box
}

// BBox is an axis-aligned lon/lat rectangle
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// EmptyBBox returns a box that any Extend call replaces
func EmptyBBox() BBox {
	return BBox{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
}

// IsEmpty reports whether no point has been added
func (b BBox) IsEmpty() bool {
	return b.MinLon > b.MaxLon || b.MinLat > b.MaxLat
}

// Extend grows the box to include p
func (b BBox) Extend(p Point) BBox {
	return BBox{
		MinLon: math.Min(b.MinLon, p.Lon),
		MinLat: math.Min(b.MinLat, p.Lat),
		MaxLon: math.Max(b.MaxLon, p.Lon),
		MaxLat: math.Max(b.MaxLat, p.Lat),
	}
}

// Union returns the smallest box covering both
func (b BBox) Union(o BBox) BBox {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.Extend(Point{o.MinLon, o.MinLat}).Extend(Point{o.MaxLon, o.MaxLat})
}

// Pad expands each side by frac of the box extent. Degenerate boxes get a fixed 0.01° pad.
func (b BBox) Pad(frac float64) BBox {
	dx := (b.MaxLon - b.MinLon) * frac
	dy := (b.MaxLat - b.MinLat) * frac
	if dx == 0 {
		dx = 0.01
	}
	if dy == 0 {
		dy = 0.01
	}
	return BBox{b.MinLon - dx, b.MinLat - dy, b.MaxLon + dx, b.MaxLat + dy}
}

// Center returns the midpoint
func (b BBox) Center() Point {
	return Point{Lon: (b.MinLon + b.MaxLon) / 2, Lat: (b.MinLat + b.MaxLat) / 2}
}

// WellMap is everything drawn on the well location figure
type WellMap struct {
	Title string
	Area  *Boundary
	State *Boundary
	Wells []Point
}
