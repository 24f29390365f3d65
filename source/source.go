// Package source fetches raw sales exports from files and HTTP endpoints
// (a published Google Sheet's export?format=csv link works) and caches the
// parsed result.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spektr-org/salespulse/helpers"
	"github.com/spektr-org/salespulse/sales"
)

// ErrFetch wraps every failure to obtain or parse an export.
var ErrFetch = errors.New("fetch sales export")

// MaxBodyBytes caps how much of a remote export is read.
const MaxBodyBytes = 64 << 20

// Source yields one snapshot of a sales export.
type Source interface {
	Fetch(ctx context.Context) (sales.Dataset, error)
	// Name identifies the source in logs and cache keys.
	Name() string
}

// Open picks an HTTP source for http(s) locations and a file source otherwise.
func Open(location string, client *http.Client) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: no data source configured", ErrFetch)
	}
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &HTTP{URL: location, Client: client}, nil
	}
	return &File{Path: location}, nil
}

// ============================================================================
// FILE
// ============================================================================

// File reads a CSV or JSON export from disk. A .json extension selects JSON;
// anything else is sniffed.
type File struct {
	Path string
}

func (f *File) Name() string { return "file:" + f.Path }

func (f *File) Fetch(ctx context.Context) (sales.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: %s: %w", ErrFetch, f.Path, err)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	contentType := ""
	if strings.EqualFold(filepath.Ext(f.Path), ".json") {
		contentType = "application/json"
	}
	ds, err := helpers.Parse(data, contentType)
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: %s: %w", ErrFetch, f.Path, err)
	}
	return ds, nil
}

// ============================================================================
// HTTP
// ============================================================================

// HTTP downloads an export with GET. The response Content-Type picks the
// parser; without one the body is sniffed.
type HTTP struct {
	URL    string
	Client *http.Client
}

// NewHTTPClient returns a client suited to spreadsheet exports.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
		},
	}
}

func (h *HTTP) Name() string { return h.URL }

func (h *HTTP) Fetch(ctx context.Context) (sales.Dataset, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "text/csv, application/json;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sales.Dataset{}, fmt.Errorf("%w: %s returned status %d", ErrFetch, h.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	if len(data) > MaxBodyBytes {
		return sales.Dataset{}, fmt.Errorf("%w: export exceeds %d bytes", ErrFetch, MaxBodyBytes)
	}

	ds, err := helpers.Parse(data, resp.Header.Get("Content-Type"))
	if err != nil {
		return sales.Dataset{}, fmt.Errorf("%w: %s: %w", ErrFetch, h.URL, err)
	}
	return ds, nil
}
