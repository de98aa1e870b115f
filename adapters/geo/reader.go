package geo

import (
	"context"
	"strings"

	"soilqc/adapters/api"
	"soilqc/domain/qaqc"
	"soilqc/domain/spatial"
	"soilqc/internal"
	"soilqc/internal/errors"
	"soilqc/ports"
)

// Config names the coordinate columns of the wells table
type Config struct {
	LongitudeColumn string
	LatitudeColumn  string
	CRS             string
}

// DefaultConfig matches the state geological survey well exports
func DefaultConfig() Config {
	return Config{LongitudeColumn: "Long_Dec", LatitudeColumn: "Lat_Dec", CRS: spatial.CRS84}
}

// Reader loads boundaries and well locations
type Reader struct {
	config  Config
	fetcher ports.Fetcher
	tables  ports.TableSource
	logger  *internal.Logger
}

var (
	_ ports.BoundarySource = (*Reader)(nil)
	_ ports.WellSource     = (*Reader)(nil)
)

// NewReader creates a reader; tables loads the wells CSV, fetcher the GeoJSON files
func NewReader(config Config, fetcher ports.Fetcher, tables ports.TableSource, logger *internal.Logger) (*Reader, error) {
	def := DefaultConfig()
	if config.LongitudeColumn == "" {
		config.LongitudeColumn = def.LongitudeColumn
	}
	if config.LatitudeColumn == "" {
		config.LatitudeColumn = def.LatitudeColumn
	}
	if config.CRS == "" {
		config.CRS = def.CRS
	}
	if !strings.EqualFold(config.CRS, spatial.CRS84) {
		return nil, errors.InvalidInputf("unsupported CRS %s (only %s)", config.CRS, spatial.CRS84)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{config: config, fetcher: fetcher, tables: tables, logger: logger.With("geo")}, nil
}

// LoadBoundary reads a GeoJSON outline from a path or URL
func (r *Reader) LoadBoundary(ctx context.Context, location string) (*spatial.Boundary, error) {
	content, err := api.ReadLocation(ctx, r.fetcher, location)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load boundary %s", location)
	}
	b, err := ParseBoundary(content)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse boundary %s", location)
	}
	r.logger.Debug("boundary %s: %d polygons", location, len(b.Polygons))
	return b, nil
}

// LoadWells reads well coordinates from a tabular source
func (r *Reader) LoadWells(ctx context.Context, location string) ([]spatial.Point, error) {
	t, err := r.tables.Load(ctx, location, "")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load wells %s", location)
	}
	return r.Wells(t)
}

// Wells extracts valid points from t, skipping rows with unusable coordinates
func (r *Reader) Wells(t *qaqc.Table) ([]spatial.Point, error) {
	if err := t.RequireColumns(r.config.LongitudeColumn, r.config.LatitudeColumn); err != nil {
		return nil, err
	}
	points := make([]spatial.Point, 0, t.Len())
	skipped := 0
	for i := range t.Rows {
		p := spatial.Point{Lon: t.Float(i, r.config.LongitudeColumn), Lat: t.Float(i, r.config.LatitudeColumn)}
		if !p.Valid() {
			skipped++
			continue
		}
		points = append(points, p)
	}
	if skipped > 0 {
		r.logger.Warn("skipped %d of %d wells with missing or out-of-range coordinates", skipped, t.Len())
	}
	r.logger.Info("loaded %d wells", len(points))
	return points, nil
}
