// Package transport provides the outbound http.RoundTripper used for catalog
// requests: robots.txt checks, rate limiting, request jitter and an optional
// forward proxy.
package transport

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies the client to catalog hosts.
const DefaultUserAgent = "skinscout/1.0 (+https://github.com/lukman83/skinscout)"

// Transport applies the request pipeline:
// UserAgent → RobotsCheck → RateLimiter → Delay → Send
//
// Delay is the larger of the jitter draw and the host's robots.txt
// Crawl-delay.
type Transport struct {
	Base        http.RoundTripper
	UserAgent   string
	Robots      *RobotsChecker
	Jitter      *Jitter
	RateLimiter *rate.Limiter
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ua := t.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", ua)

	if t.Robots != nil && !t.Robots.IsAllowed(req.Context(), ua, req.URL) {
		return nil, fmt.Errorf("blocked by robots.txt: %s", req.URL.Path)
	}

	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var delay time.Duration
	if t.Jitter != nil {
		delay = t.Jitter.Next()
	}
	if t.Robots != nil {
		host := req.URL.Scheme + "://" + req.URL.Host
		if cd := t.Robots.CrawlDelay(req.Context(), ua, host); cd > delay {
			delay = cd
		}
	}
	if err := sleep(req.Context(), delay); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
