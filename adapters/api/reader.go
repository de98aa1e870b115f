package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"soilqc/internal"
	"soilqc/internal/errors"
	"soilqc/ports"
)

var _ ports.Fetcher = (*Fetcher)(nil)

// Fetcher downloads remote files over HTTP GET
type Fetcher struct {
	config     FetchConfig
	httpClient *http.Client
	logger     *internal.Logger
}

// NewFetcher creates a fetcher; a zero config field falls back to its default
func NewFetcher(config FetchConfig, logger *internal.Logger) *Fetcher {
	def := DefaultFetchConfig()
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = def.MaxBytes
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Fetcher{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With("fetch"),
	}
}

// IsURL reports whether location is an http(s) URL rather than a local path
func IsURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Fetch retrieves the body at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, errors.InvalidInputf("not an http(s) URL: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to build request")
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError(hostOf(rawURL), fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		cause := fmt.Errorf("GET %s: unexpected status %s: %s", rawURL, resp.Status, strings.TrimSpace(string(b)))
		return nil, errors.ExternalServiceError(hostOf(rawURL), cause)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return nil, errors.ExternalServiceError(hostOf(rawURL), fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(body)) > f.config.MaxBytes {
		return nil, errors.InvalidInputf("response from %s exceeds %d bytes", rawURL, f.config.MaxBytes)
	}

	f.logger.Debug("GET %s -> %d bytes in %.2fms", rawURL, len(body), float64(time.Since(start).Nanoseconds())/1e6)
	return body, nil
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	return rawURL
}

// ReadLocation returns the bytes at location: fetched when it is an http(s) URL,
// read from disk otherwise. fetcher may be nil for local paths.
func ReadLocation(ctx context.Context, fetcher ports.Fetcher, location string) ([]byte, error) {
	if IsURL(location) {
		if fetcher == nil {
			return nil, errors.InvalidInputf("remote source %s requires a fetcher", location)
		}
		return fetcher.Fetch(ctx, location)
	}
	content, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("file " + location)
		}
		return nil, errors.Wrapf(err, "failed to open %s", location)
	}
	return content, nil
}
