package api

import (
	"time"
)

// FetchConfig holds HTTP settings for remote tables and boundary files
type FetchConfig struct {
	Timeout   time.Duration `json:"timeout"`
	UserAgent string        `json:"user_agent"`
	// MaxBytes caps a response body; 0 means DefaultMaxBytes
	MaxBytes int64 `json:"max_bytes"`
}

// DefaultMaxBytes bounds downloads to 64 MiB
const DefaultMaxBytes int64 = 64 << 20

// DefaultFetchConfig returns sensible defaults for public raw-file hosts
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:   30 * time.Second,
		UserAgent: "soilqc/1.0",
		MaxBytes:  DefaultMaxBytes,
	}
}
