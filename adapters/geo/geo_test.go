package geo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soilqc/adapters/excel"
	"soilqc/domain/qaqc"
	"soilqc/internal"
	"soilqc/internal/errors"
)

var quietLogger = internal.NewLogger(internal.LogLevelError)

const kansasFeatureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NAME": "Kansas"},
     "geometry": {"type": "Polygon", "coordinates": [[[-102.05,37.0],[-94.6,37.0],[-94.6,40.0],[-102.05,40.0],[-102.05,37.0]]]}},
    {"type": "Feature", "properties": {}, "geometry": null},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Point", "coordinates": [-98, 38]}}
  ]
}`

const areaMultiPolygon = `{"type":"MultiPolygon","coordinates":[
  [[[-99.5,38.0],[-99.0,38.0],[-99.0,38.5],[-99.5,38.0]]],
  [[[-98.5,38.2],[-98.2,38.2],[-98.2,38.4],[-98.5,38.2]],[[-98.4,38.25],[-98.3,38.25],[-98.3,38.3],[-98.4,38.25]]]
]}`

func TestParseBoundary_FeatureCollection(t *testing.T) {
	b, err := ParseBoundary([]byte(kansasFeatureCollection))
	require.NoError(t, err)
	assert.Equal(t, "Kansas", b.Name)
	require.Len(t, b.Polygons, 1)
	assert.Len(t, b.Polygons[0][0], 5)
	box := b.Bounds()
	assert.InDelta(t, -102.05, box.MinLon, 1e-12)
	assert.InDelta(t, 40.0, box.MaxLat, 1e-12)
}

func TestParseBoundary_MultiPolygonWithHole(t *testing.T) {
	b, err := ParseBoundary([]byte(areaMultiPolygon))
	require.NoError(t, err)
	require.Len(t, b.Polygons, 2)
	assert.Len(t, b.Polygons[1], 2)
}

func TestParseBoundary_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"invalid json": `{"type":`,
		"no polygons":  `{"type":"Point","coordinates":[1,2]}`,
		"short pos":    `{"type":"Polygon","coordinates":[[[1]]]}`,
		"untyped":      `{"coordinates":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBoundary([]byte(in))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
		})
	}
}

func TestReader_Wells(t *testing.T) {
	r, err := NewReader(DefaultConfig(), nil, nil, quietLogger)
	require.NoError(t, err)

	tbl := qaqc.NewTable([]string{"Well", "Long_Dec", "Lat_Dec"}, [][]string{
		{"1", "-99.1", "38.3"},
		{"2", "", "38.1"},
		{"3", "-98.7", "95"},
		{"4", "-98.9", "38.2"},
	})
	pts, err := r.Wells(tbl)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.InDelta(t, -98.9, pts[1].Lon, 1e-12)

	_, err = r.Wells(qaqc.NewTable([]string{"x", "y"}, nil))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestReader_LoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	wells := filepath.Join(dir, "wells.csv")
	area := filepath.Join(dir, "area.geojson")
	require.NoError(t, os.WriteFile(wells, []byte("lon,lat\n-99.1,38.3\n-98.9,38.2\n"), 0o644))
	require.NoError(t, os.WriteFile(area, []byte(areaMultiPolygon), 0o644))

	tables := excel.NewDataReader(excel.DefaultReaderConfig(), nil, quietLogger)
	r, err := NewReader(Config{LongitudeColumn: "lon", LatitudeColumn: "lat"}, nil, tables, quietLogger)
	require.NoError(t, err)

	pts, err := r.LoadWells(context.Background(), wells)
	require.NoError(t, err)
	assert.Len(t, pts, 2)

	b, err := r.LoadBoundary(context.Background(), area)
	require.NoError(t, err)
	assert.Len(t, b.Polygons, 2)

	_, err = r.LoadBoundary(context.Background(), filepath.Join(dir, "missing.geojson"))
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestNewReader_RejectsOtherCRS(t *testing.T) {
	_, err := NewReader(Config{CRS: "EPSG:3857"}, nil, nil, quietLogger)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
