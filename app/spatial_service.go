package app

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"soilqc/domain/core"
	"soilqc/domain/spatial"
	"soilqc/internal"
	"soilqc/internal/errors"
	"soilqc/ports"
)

// SpatialService builds the well location map
type SpatialService struct {
	boundaries ports.BoundarySource
	wells      ports.WellSource
	maps       ports.MapRenderer
	logger     *internal.Logger
}

// NewSpatialService creates the service
func NewSpatialService(boundaries ports.BoundarySource, wells ports.WellSource, maps ports.MapRenderer, logger *internal.Logger) *SpatialService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SpatialService{boundaries: boundaries, wells: wells, maps: maps, logger: logger.With("spatial")}
}

// WellMapRequest names the three inputs and the PNG destination
type WellMapRequest struct {
	Wells   string
	State   string
	Area    string
	Title   string
	OutPath string
}

// WellMapResult summarizes a rendered map
type WellMapResult struct {
	RunID    core.RunID
	Wells    int
	OutPath  string
	Duration time.Duration
}

// RenderWellMap fetches wells and both outlines concurrently, then draws the map.
// The state outline is optional; without it no inset is drawn.
func (s *SpatialService) RenderWellMap(ctx context.Context, req WellMapRequest) (*WellMapResult, error) {
	if req.Wells == "" || req.Area == "" {
		return nil, errors.InvalidInput("wells and area sources are required")
	}
	if req.OutPath == "" {
		return nil, errors.InvalidInput("output path is required")
	}

	start := time.Now()
	runID := core.NewRunID()
	s.logger.Info("run %s: well map", runID.Short())

	var m spatial.WellMap
	m.Title = req.Title

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pts, err := s.wells.LoadWells(gctx, req.Wells)
		m.Wells = pts
		return err
	})
	g.Go(func() error {
		b, err := s.boundaries.LoadBoundary(gctx, req.Area)
		m.Area = b
		return err
	})
	if req.State != "" {
		g.Go(func() error {
			b, err := s.boundaries.LoadBoundary(gctx, req.State)
			m.State = b
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := writeFile(req.OutPath, func(w io.Writer) error {
		return s.maps.RenderWellMap(w, m)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("run %s: wrote %s (%d wells)", runID.Short(), req.OutPath, len(m.Wells))
	return &WellMapResult{
		RunID:    runID,
		Wells:    len(m.Wells),
		OutPath:  req.OutPath,
		Duration: time.Since(start),
	}, nil
}
