package geo

import (
	"github.com/tidwall/gjson"

	"soilqc/domain/spatial"
	"soilqc/internal/errors"
)

// ParseBoundary decodes a FeatureCollection, Feature, GeometryCollection or bare
// Polygon/MultiPolygon into a single boundary. Non-polygon geometries are ignored.
func ParseBoundary(content []byte) (*spatial.Boundary, error) {
	if !gjson.ValidBytes(content) {
		return nil, errors.InvalidInput("boundary is not valid JSON")
	}
	root := gjson.ParseBytes(content)
	b := &spatial.Boundary{}
	if err := collect(root, b); err != nil {
		return nil, err
	}
	if len(b.Polygons) == 0 {
		return nil, errors.InvalidInput("boundary contains no polygon geometry")
	}
	return b, nil
}

func collect(obj gjson.Result, b *spatial.Boundary) error {
	switch t := obj.Get("type").String(); t {
	case "FeatureCollection":
		var err error
		obj.Get("features").ForEach(func(_, feature gjson.Result) bool {
			err = collect(feature, b)
			return err == nil
		})
		return err
	case "Feature":
		if b.Name == "" {
			b.Name = featureName(obj.Get("properties"))
		}
		geom := obj.Get("geometry")
		if !geom.Exists() || geom.Type == gjson.Null {
			return nil
		}
		return collect(geom, b)
	case "GeometryCollection":
		var err error
		obj.Get("geometries").ForEach(func(_, g gjson.Result) bool {
			err = collect(g, b)
			return err == nil
		})
		return err
	case "Polygon":
		poly, err := parsePolygon(obj.Get("coordinates"))
		if err != nil {
			return err
		}
		b.Polygons = append(b.Polygons, poly)
	case "MultiPolygon":
		for _, c := range obj.Get("coordinates").Array() {
			poly, err := parsePolygon(c)
			if err != nil {
				return err
			}
			b.Polygons = append(b.Polygons, poly)
		}
	case "":
		return errors.InvalidInput("GeoJSON object has no type")
	}
	return nil
}

func parsePolygon(coords gjson.Result) (spatial.Polygon, error) {
	if !coords.IsArray() {
		return nil, errors.InvalidInput("polygon coordinates must be an array")
	}
	var poly spatial.Polygon
	for _, r := range coords.Array() {
		var ring spatial.Ring
		for _, pt := range r.Array() {
			xy := pt.Array()
			if len(xy) < 2 {
				return nil, errors.InvalidInputf("position %s has fewer than two coordinates", pt.Raw)
			}
			ring = append(ring, spatial.Point{Lon: xy[0].Float(), Lat: xy[1].Float()})
		}
		if len(ring) > 0 {
			poly = append(poly, ring)
		}
	}
	if len(poly) == 0 {
		return nil, errors.InvalidInput("polygon has no rings")
	}
	return poly, nil
}

func featureName(props gjson.Result) string {
	for _, key := range []string{"NAME", "name", "Name", "STATE_NAME"} {
		if v := props.Get(key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
