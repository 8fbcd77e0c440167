package bridge

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// offlineDocument is served for failed navigations when neither network nor
// cache can satisfy the request.
const offlineDocument = `<!doctype html>
<html>
<head><title>Offline</title></head>
<body><h1>You are offline</h1><p>Your journal is still available; changes sync when the connection returns.</p></body>
</html>
`

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// CachingTransport is an http.RoundTripper applying the offline-first fetch
// policy: listed static assets are served cache-first, everything else
// network-first with cache fallback. Navigations that fail both ways get a
// fixed offline document. Non-GET requests pass through untouched and are
// never cached.
type CachingTransport struct {
	base   http.RoundTripper
	static map[string]struct{}

	mu    sync.Mutex
	cache map[string]*cachedResponse
}

// NewCachingTransport wraps base (nil means http.DefaultTransport). The
// staticURLs are matched exactly against the request URL.
func NewCachingTransport(base http.RoundTripper, staticURLs []string) *CachingTransport {
	static := make(map[string]struct{}, len(staticURLs))
	for _, u := range staticURLs {
		static[u] = struct{}{}
	}
	return &CachingTransport{
		base:   base,
		static: static,
		cache:  make(map[string]*cachedResponse),
	}
}

func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.transport().RoundTrip(req)
	}

	key := req.URL.String()
	if _, ok := t.static[key]; ok {
		return t.cacheFirst(req, key)
	}
	return t.networkFirst(req, key)
}

func (t *CachingTransport) cacheFirst(req *http.Request, key string) (*http.Response, error) {
	if cached := t.lookup(key); cached != nil {
		return cached.response(req), nil
	}

	resp, err := t.fetchAndStore(req, key)
	if err == nil {
		return resp, nil
	}
	if isNavigation(req) {
		return offlineResponse(req), nil
	}
	return nil, err
}

func (t *CachingTransport) networkFirst(req *http.Request, key string) (*http.Response, error) {
	resp, err := t.fetchAndStore(req, key)
	if err == nil {
		return resp, nil
	}

	if cached := t.lookup(key); cached != nil {
		return cached.response(req), nil
	}
	if isNavigation(req) {
		return offlineResponse(req), nil
	}
	return nil, err
}

// fetchAndStore performs the network request and caches successful
// responses. The body is fully read so the cached copy and the returned
// response are independent.
func (t *CachingTransport) fetchAndStore(req *http.Request, key string) (*http.Response, error) {
	resp, err := t.transport().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		t.mu.Lock()
		t.cache[key] = &cachedResponse{
			status: resp.StatusCode,
			header: resp.Header.Clone(),
			body:   body,
		}
		t.mu.Unlock()
	}
	return resp, nil
}

func (t *CachingTransport) lookup(key string) *cachedResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache[key]
}

func (t *CachingTransport) transport() http.RoundTripper {
	if t.base != nil {
		return t.base
	}
	return http.DefaultTransport
}

func (c *cachedResponse) response(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: c.status,
		Status:     http.StatusText(c.status),
		Header:     c.header.Clone(),
		Body:       io.NopCloser(bytes.NewReader(c.body)),
		Request:    req,
	}
}

func offlineResponse(req *http.Request) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "text/html; charset=utf-8")
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     http.StatusText(http.StatusOK),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(offlineDocument)),
		Request:    req,
	}
}

func isNavigation(req *http.Request) bool {
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}
