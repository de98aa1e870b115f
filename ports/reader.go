package ports

import (
	"context"

	"soilqc/domain/qaqc"
)

// Fetcher retrieves remote files over HTTP
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TableSource loads an observation table from a path or URL.
// An empty sheet selects the source's default sheet; CSV sources ignore it.
type TableSource interface {
	Load(ctx context.Context, location, sheet string) (*qaqc.Table, error)
}
