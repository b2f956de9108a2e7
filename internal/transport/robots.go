package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsChecker caches and checks robots.txt rules per host.
type RobotsChecker struct {
	rules    map[string]*robotstxt.RobotsData
	expiry   map[string]time.Time
	mu       sync.RWMutex
	client   *http.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewRobotsChecker creates a checker that fetches robots.txt with client,
// which must not route through a Transport using this checker.
func NewRobotsChecker(client *http.Client, logger *zap.Logger) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RobotsChecker{
		rules:    make(map[string]*robotstxt.RobotsData),
		expiry:   make(map[string]time.Time),
		client:   client,
		cacheTTL: time.Hour,
		logger:   logger,
	}
}

// IsAllowed reports whether u may be fetched by userAgent. Hosts whose
// robots.txt cannot be fetched are allowed.
func (r *RobotsChecker) IsAllowed(ctx context.Context, userAgent string, u *url.URL) bool {
	if u.Path == "/robots.txt" {
		return true
	}
	host := u.Scheme + "://" + u.Host
	data, err := r.get(ctx, host)
	if err != nil {
		r.logger.Debug("robots.txt unavailable, allowing", zap.String("host", host), zap.Error(err))
		return true
	}
	return data.FindGroup(userAgent).Test(u.Path)
}

// CrawlDelay returns the crawl delay the host asks of userAgent.
func (r *RobotsChecker) CrawlDelay(ctx context.Context, userAgent, host string) time.Duration {
	data, err := r.get(ctx, host)
	if err != nil {
		return 0
	}
	return data.FindGroup(userAgent).CrawlDelay
}

func (r *RobotsChecker) get(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.rules[host]
	exp := r.expiry[host]
	r.mu.RUnlock()
	if ok && time.Now().Before(exp) {
		return data, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.rules[host]; ok && time.Now().Before(r.expiry[host]) {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("build robots.txt request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("fetch robots.txt: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}
	data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.rules[host] = data
	r.expiry[host] = time.Now().Add(r.cacheTTL)
	return data, nil
}
