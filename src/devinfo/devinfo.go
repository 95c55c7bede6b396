// Package devinfo caches the tracker's developer directory, used for report
// assignee pickers. The cache is owned by whoever coordinates triage and is
// passed explicitly; there is no process-global copy.
package devinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"faultline-agent/src/logger"
)

// Developer is one assignable developer from the tracker directory.
type Developer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Fetcher retrieves the developer list. Implementations must honor ctx.
type Fetcher interface {
	FetchDevelopers(ctx context.Context) ([]Developer, error)
}

// Cache holds the fetched developer list. At most one fetch is in flight at
// a time; concurrent Load calls while a fetch runs are dropped rather than
// duplicated. Completion callbacks run on the fetch goroutine, so owners
// with single-goroutine state must marshal back to their own loop.
type Cache struct {
	mu       sync.Mutex
	loaded   bool
	fetching bool
	devs     []Developer
}

// NewCache returns an empty, unloaded cache.
func NewCache() *Cache {
	return &Cache{}
}

// Loaded reports whether a fetch has completed successfully.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Developers returns the cached list (nil until loaded).
func (c *Cache) Developers() []Developer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.devs
}

// Load starts an asynchronous fetch unless the cache is already loaded or a
// fetch is in flight. Returns whether a fetch was started. onDone fires only
// for the fetch this call started.
func (c *Cache) Load(ctx context.Context, fetcher Fetcher, log logger.Logger, onDone func([]Developer, error)) bool {
	c.mu.Lock()
	if c.loaded || c.fetching {
		c.mu.Unlock()
		return false
	}
	c.fetching = true
	c.mu.Unlock()

	go func() {
		devs, err := fetcher.FetchDevelopers(ctx)

		c.mu.Lock()
		c.fetching = false
		if err == nil {
			c.loaded = true
			c.devs = devs
		}
		c.mu.Unlock()

		if err != nil {
			log.Error("failed to fetch developer list: %v", err)
		}
		if onDone != nil {
			onDone(devs, err)
		}
	}()
	return true
}

// HTTPFetcher retrieves the developer list from a JSON endpoint.
type HTTPFetcher struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher for the given endpoint.
func NewHTTPFetcher(endpoint string) *HTTPFetcher {
	return &HTTPFetcher{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchDevelopers GETs the directory endpoint.
func (f *HTTPFetcher) FetchDevelopers(ctx context.Context) ([]Developer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch developers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var devs []Developer
	if err := json.NewDecoder(resp.Body).Decode(&devs); err != nil {
		return nil, fmt.Errorf("failed to decode developer list: %w", err)
	}
	return devs, nil
}
