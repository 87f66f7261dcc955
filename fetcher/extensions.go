package fetcher

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"id5multiplexing/consent"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions is sent when no extensions endpoint answered.
var DefaultExtensions = map[string]any{"lbCDN": "%%LB_CDN%%"}

// ExtensionsCache stores the gathered extensions between page views. Implemented by storage.Store.
type ExtensionsCache interface {
	CachedExtensions(g consent.LocalStorageGrant) (map[string]any, bool)
	StoreExtensions(g consent.LocalStorageGrant, ext map[string]any, ttl time.Duration) bool
}

// Extensions collects auxiliary signals from the extensions endpoints. Every endpoint is called
// concurrently and may fail on its own; the answers that arrived are merged in endpoint order.
type Extensions struct {
	transport interfaces.HTTPTransport
	cache     ExtensionsCache
	endpoints []string
	timeout   time.Duration
	logger    log.Logger
}

// NewExtensions panics on nil transport, cache or logger. timeout bounds each endpoint call.
func NewExtensions(transport interfaces.HTTPTransport, cache ExtensionsCache, endpoints []string, timeout time.Duration, logger log.Logger) *Extensions {
	return &Extensions{
		transport: helpers.NilPanic(transport, "fetcher.extensions.go: transport is required"),
		cache:     helpers.NilPanic(cache, "fetcher.extensions.go: cache is required"),
		endpoints: endpoints,
		timeout:   timeout,
		logger:    log.With(helpers.NilPanic(logger, "fetcher.extensions.go: logger is required"), "component", "extensions"),
	}
}

// Gather returns the cached extensions if any, otherwise calls every endpoint. The merged answer is
// cached for its "ttl" seconds when the grant allows writes. DefaultExtensions is returned when no
// endpoint answered.
func (e *Extensions) Gather(ctx context.Context, grant consent.LocalStorageGrant) map[string]any {
	if cached, ok := e.cache.CachedExtensions(grant); ok {
		return cached
	}

	results := make([]map[string]any, len(e.endpoints))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range e.endpoints {
		i, url := i, url
		g.Go(func() error {
			res, err := e.call(gctx, url)
			if err != nil {
				level.Warn(e.logger).Log("msg", "extensions endpoint failed", "url", url, "err", err)
				return nil
			}
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	merged := make(map[string]any)
	for _, r := range results {
		for k, v := range r {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return copyMap(DefaultExtensions)
	}

	var ttl time.Duration
	if v, ok := merged["ttl"].(float64); ok && v > 0 {
		ttl = time.Duration(v) * time.Second
	}
	e.cache.StoreExtensions(grant, merged, ttl)
	return merged
}

func (e *Extensions) call(ctx context.Context, url string) (map[string]any, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	body, err := e.transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
