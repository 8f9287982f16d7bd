// Package dataset loads the GeoJSON fatality dataset.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
)

// Loader retrieves and parses the dataset. Implementations do not retry.
type Loader interface {
	Load(ctx context.Context) (*domain.FeatureCollection, error)
}

// Decode parses a GeoJSON FeatureCollection and validates its year schema.
func Decode(r io.Reader) (*domain.FeatureCollection, error) {
	var fc domain.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse dataset: expected FeatureCollection, got %q", fc.Type)
	}
	if err := domain.ValidateSchema(&fc); err != nil {
		return nil, fmt.Errorf("validate dataset: %w", err)
	}
	return &fc, nil
}

// HTTPLoader fetches the dataset with a single plain GET.
type HTTPLoader struct {
	url        string
	httpClient *http.Client
}

// NewHTTPLoader creates a loader for url.
func NewHTTPLoader(url string, timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (l *HTTPLoader) Load(ctx context.Context) (*domain.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, body)
	}

	return Decode(resp.Body)
}

// FileLoader reads the dataset from the local filesystem.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Load(ctx context.Context) (*domain.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
