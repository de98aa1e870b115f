package ports

import (
	"io"

	"soilqc/domain/qaqc"
	"soilqc/domain/spatial"
)

// HistogramRenderer draws the CV and precision distributions as PNG
type HistogramRenderer interface {
	RenderDispersion(w io.Writer, records []qaqc.DispersionRecord) error
}

// MapRenderer draws wells over boundary outlines as PNG
type MapRenderer interface {
	RenderWellMap(w io.Writer, m spatial.WellMap) error
}
