package linkstatus

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultInterval    = 5 * time.Minute
	DefaultTTL         = 5 * time.Minute
	DefaultTimeout     = 10 * time.Second
	defaultConcurrency = 8
)

type Options struct {
	HTTPClient  *http.Client
	TTL         time.Duration
	Interval    time.Duration
	Concurrency int
	Logger      *zap.Logger
	Now         func() time.Time
	// OnSweep runs after each successful sweep of Run.
	OnSweep     func(ctx context.Context, statuses []dashboard.LinkStatus)
}

// Checker probes item URLs with HEAD requests and caches the result per URL.
// Any HTTP response counts as reachable; only transport failures mark a link
// unreachable.
type Checker struct {
	opts Options

	mu    sync.RWMutex
	cache map[string]dashboard.LinkStatus
}

var _ dashboard.LinkChecker = (*Checker)(nil)

func New(opts Options) *Checker {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Checker{opts: opts, cache: make(map[string]dashboard.LinkStatus)}
}

// Check returns one status per item in input order. Fresh cache entries are
// reused; the rest are probed concurrently.
func (c *Checker) Check(ctx context.Context, items []dashboard.Item) ([]dashboard.LinkStatus, error) {
	return c.sweep(ctx, items, false)
}

// Run probes every item of source immediately and then once per interval
// until ctx is cancelled.
func (c *Checker) Run(ctx context.Context, source dashboard.ItemSource) error {
	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()
	for {
		statuses, err := c.sweep(ctx, source.Items(), true)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			c.opts.Logger.Warn("link status sweep failed", zap.Error(err))
		case c.opts.OnSweep != nil:
			c.opts.OnSweep(ctx, statuses)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Cached returns the last known status for url without probing.
func (c *Checker) Cached(url string) (dashboard.LinkStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status, ok := c.cache[dashboard.CheckURL(url)]
	return status, ok
}

func (c *Checker) sweep(ctx context.Context, items []dashboard.Item, force bool) ([]dashboard.LinkStatus, error) {
	out := make([]dashboard.LinkStatus, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, item := range items {
		target := dashboard.CheckURL(item.URL)
		out[i] = dashboard.LinkStatus{ItemID: item.ID, URL: item.URL, State: dashboard.LinkUnknown}
		if target == "" {
			continue
		}
		if !force {
			if cached, ok := c.fresh(target); ok {
				out[i].State, out[i].Code, out[i].CheckedAt = cached.State, cached.Code, cached.CheckedAt
				continue
			}
		}
		g.Go(func() error {
			status := c.probe(gctx, target)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			c.store(target, status)
			out[i].State, out[i].Code, out[i].CheckedAt = status.State, status.Code, status.CheckedAt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Checker) probe(ctx context.Context, target string) dashboard.LinkStatus {
	status := dashboard.LinkStatus{URL: target, State: dashboard.LinkUnreachable}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		c.opts.Logger.Debug("link status: bad url", zap.String("url", target), zap.Error(err))
		status.CheckedAt = c.opts.Now()
		return status
	}
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.opts.HTTPClient.Do(req)
	status.CheckedAt = c.opts.Now()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.opts.Logger.Debug("link status: unreachable", zap.String("url", target), zap.Error(err))
		}
		return status
	}
	resp.Body.Close()
	status.State, status.Code = dashboard.LinkReachable, resp.StatusCode
	return status
}

func (c *Checker) fresh(target string) (dashboard.LinkStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status, ok := c.cache[target]
	if !ok || c.opts.Now().Sub(status.CheckedAt) > c.opts.TTL {
		return dashboard.LinkStatus{}, false
	}
	return status, true
}

func (c *Checker) store(target string, status dashboard.LinkStatus) {
	c.mu.Lock()
	c.cache[target] = status
	c.mu.Unlock()
}
