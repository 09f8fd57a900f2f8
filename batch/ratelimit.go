package batch

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter provides per-host rate limiting using token buckets.
// Requests to different hosts proceed concurrently while requests within
// one host are spaced out.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
// Each host gets its own limiter with a burst of 1.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the host.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// WaitURL waits on the host of location. Locations without a host, such as
// local file paths, are not limited.
func (d *DomainLimiter) WaitURL(ctx context.Context, location string) error {
	u, err := url.Parse(location)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	return d.Wait(ctx, u.Hostname())
}
