// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package forward

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/crossenv-gateway/pkg/auth"
	"github.com/go-core-stack/crossenv-gateway/pkg/target"
)

const contentTypeJSON = "application/json"

// hopHeaders lists standard hop-by-hop headers that describe the upstream
// connection and must not be relayed to the browser.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Proxy-Connection":    {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// Options tunes the outbound client.
type Options struct {
	// Timeout bounds a whole upstream exchange. Zero keeps the library default (none).
	Timeout time.Duration
	// InsecureSkipVerify disables TLS verification for self-signed dev upstreams.
	InsecureSkipVerify bool
	// Registerer receives the upstream metrics. Nil discards them.
	Registerer prometheus.Registerer
	// Namespace prefixes metric names.
	Namespace string
}

// Request is the inbound request reduced to what the upstream may see.
type Request struct {
	Method string
	// Path is the escaped path remainder, starting with "/".
	Path  string
	Query url.Values
	// Body is the normalised JSON body; ignored for GET and HEAD.
	Body []byte
}

// Response is a fully buffered upstream response ready to be relayed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Engine sends forwarded requests upstream. It is safe for concurrent use.
type Engine struct {
	client  *http.Client
	logger  zerolog.Logger
	metrics *upstreamMetrics
}

// New constructs an Engine backed by an http.Client that picks plaintext or
// TLS per request from the URL scheme.
func New(opts Options) *Engine {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify, // nolint:gosec -- opt-in for development upstreams
		},
	}

	return &Engine{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				// Redirects are relayed to the browser untouched.
				return http.ErrUseLastResponse
			},
		},
		logger:  log.With().Str("component", "forward").Logger(),
		metrics: newUpstreamMetrics(opts.Registerer, opts.Namespace),
	}
}

// CloseIdleConnections releases pooled upstream connections.
func (e *Engine) CloseIdleConnections() {
	e.client.CloseIdleConnections()
}

// Forward sends req to the resolved target and buffers the upstream response.
// Upstream non-2xx statuses are returned as regular responses; only failures
// to build the request or talk to the upstream produce an *Error.
func (e *Engine) Forward(ctx context.Context, t target.Resolved, req Request) (*Response, error) {
	start := time.Now()

	targetURL, err := buildURL(t.BaseURL, req.Path, req.Query)
	if err != nil {
		return nil, internalError(err)
	}

	var body io.Reader
	if hasBody(req.Method) {
		payload := req.Body
		if payload == nil {
			payload = emptyObject
		}
		body = bytes.NewReader(payload)
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, req.Method, targetURL.String(), body)
	if err != nil {
		return nil, internalError(fmt.Errorf("build upstream request: %w", err))
	}
	upstreamReq.Header.Set("Content-Type", contentTypeJSON)
	auth.NewBearer(t.AuthToken).Attach(upstreamReq.Header)

	e.logger.Debug().
		Str("target", string(t.Name)).
		Str("method", req.Method).
		Str("url", targetURL.Redacted()).
		Bool("auth", t.HasToken()).
		Msg("forwarding request")

	resp, err := e.client.Do(upstreamReq)
	if err != nil {
		e.metrics.observe(t.Name, req.Method, "error", time.Since(start))
		return nil, networkError(err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			e.logger.Error().
				Err(closeErr).
				Msg("close upstream response body failed")
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		e.metrics.observe(t.Name, req.Method, "error", time.Since(start))
		return nil, networkError(fmt.Errorf("read upstream response: %w", err))
	}

	e.metrics.observe(t.Name, req.Method, statusLabel(resp.StatusCode), time.Since(start))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     relayHeaders(resp.Header),
		Body:       payload,
	}, nil
}

// buildURL resolves the escaped path remainder against base and appends the
// forwarded query. Repeated keys keep their value order.
func buildURL(base *url.URL, path string, query url.Values) (*url.URL, error) {
	if base == nil {
		return nil, fmt.Errorf("missing base url")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported upstream scheme %q", base.Scheme)
	}
	if path == "" {
		path = "/"
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse forwarded path: %w", err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("forwarded path %q must be relative", path)
	}

	target := base.ResolveReference(&url.URL{Path: ref.Path, RawPath: ref.RawPath})
	target.RawQuery = ""
	target.Fragment = ""
	if len(query) > 0 {
		q := make(url.Values, len(query))
		for k, vv := range query {
			q[k] = append([]string(nil), vv...)
		}
		target.RawQuery = q.Encode()
	}
	return target, nil
}

// relayHeaders copies upstream headers except Content-Encoding and hop-by-hop
// headers. The relayed body is never re-compressed.
func relayHeaders(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for k, vv := range src {
		key := http.CanonicalHeaderKey(k)
		if _, hop := hopHeaders[key]; hop {
			continue
		}
		if key == "Content-Encoding" {
			continue
		}
		dst[key] = append(dst[key], vv...)
	}
	return dst
}

func hasBody(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}
