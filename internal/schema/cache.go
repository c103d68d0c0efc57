package schema

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ideabosque/openai-funct-base/internal/logging"
	"github.com/ideabosque/openai-funct-base/internal/metrics"
)

// Fetcher retrieves the schema of a remote function.
type Fetcher interface {
	FetchSchema(ctx context.Context, endpointID, functionName string) (*Schema, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, endpointID, functionName string) (*Schema, error)

func (f FetcherFunc) FetchSchema(ctx context.Context, endpointID, functionName string) (*Schema, error) {
	return f(ctx, endpointID, functionName)
}

// Cache memoizes schemas by function name for the lifetime of its owner.
// Entries are never evicted; failed fetches are not stored.
type Cache struct {
	fetcher Fetcher
	group   singleflight.Group

	mu      sync.RWMutex
	entries map[string]*Schema
}

func NewCache(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher, entries: make(map[string]*Schema)}
}

// GetSchema returns the cached schema for functionName, fetching it from
// endpointID on first use. Concurrent misses share one fetch; a caller whose
// ctx ends stops waiting without cancelling the fetch for the others.
func (c *Cache) GetSchema(ctx context.Context, endpointID, functionName string) (*Schema, error) {
	c.mu.RLock()
	s, ok := c.entries[functionName]
	c.mu.RUnlock()
	if ok {
		metrics.ObserveSchemaCache(true)
		return s, nil
	}
	metrics.ObserveSchemaCache(false)

	// Shared fetches outlive the cancellation of any one caller.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(functionName, func() (interface{}, error) {
		c.mu.RLock()
		s, ok := c.entries[functionName]
		c.mu.RUnlock()
		if ok {
			return s, nil
		}

		logging.Info("Fetching schema", map[string]interface{}{
			"endpoint_id": endpointID,
			"function":    functionName,
		})
		s, err := c.fetcher.FetchSchema(fetchCtx, endpointID, functionName)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[functionName] = s
		c.mu.Unlock()
		return s, nil
	})

	var (
		v   interface{}
		err error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err != nil {
		logging.Error("Schema fetch failed", map[string]interface{}{
			"endpoint_id": endpointID,
			"function":    functionName,
			"error":       err.Error(),
		})
		return nil, err
	}
	return v.(*Schema), nil
}

// Len returns the number of cached schemas.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
