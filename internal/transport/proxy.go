package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// NewBase returns the underlying HTTP transport, routed through proxyURL
// when it is non-empty.
func NewBase(proxyURL string) (*http.Transport, error) {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxyURL == "" {
		return base, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse proxy url: %q is missing scheme or host", proxyURL)
	}
	base.Proxy = http.ProxyURL(u)
	return base, nil
}
