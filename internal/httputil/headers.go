package httputil

import "net/http"

// JSONHeaders returns headers for the public catalog JSON APIs.
func JSONHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, br")
	h.Set("Connection", "keep-alive")
	return h
}

// Apply copies h onto req without dropping headers already set.
func Apply(req *http.Request, h http.Header) {
	for k, vs := range h {
		if req.Header.Get(k) != "" {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}
