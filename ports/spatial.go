package ports

import (
	"context"

	"soilqc/domain/spatial"
)

// BoundarySource loads polygon outlines from GeoJSON
type BoundarySource interface {
	LoadBoundary(ctx context.Context, location string) (*spatial.Boundary, error)
}

// WellSource loads point locations from a tabular source
type WellSource interface {
	LoadWells(ctx context.Context, location string) ([]spatial.Point, error)
}
