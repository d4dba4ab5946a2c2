// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/go-core-stack/crossenv-gateway/pkg/forward"
	"github.com/go-core-stack/crossenv-gateway/pkg/respond"
	"github.com/go-core-stack/crossenv-gateway/pkg/target"
)

const (
	msgInvalidTarget = `Invalid target. Use "from" or "to"`
	msgRequestFailed = "API request failed"
	msgServerError   = "Server error"
	msgInvalidBody   = "Invalid request body"
	msgBodyTooLarge  = "Request body too large"
)

// handleProxy resolves the target, forwards the request and relays the
// buffered upstream response.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "target")
	event := hlog.FromRequest(r).With().
		Str("target", name).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Logger()

	resolved, err := s.resolver.Resolve(name, r.Header)
	if err != nil {
		if errors.Is(err, target.ErrInvalidTarget) {
			event.Warn().Err(err).Msg("rejected proxy request")
			respond.Error(w, http.StatusBadRequest, msgInvalidTarget, "")
			return
		}
		event.Error().Err(err).Msg("resolve target failed")
		respond.Error(w, http.StatusInternalServerError, msgServerError, err.Error())
		return
	}

	var body []byte
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		if body, err = s.readBody(w, r, event); err != nil {
			return
		}
	}

	resp, err := s.engine.Forward(r.Context(), resolved, forward.Request{
		Method: r.Method,
		Path:   remainderPath(r),
		Query:  queryValues(r.URL.RawQuery),
		Body:   body,
	})
	if err != nil {
		event.Error().
			Err(err).
			Str("upstream", resolved.BaseURL.Redacted()).
			Dur("duration", time.Since(start)).
			Msg("proxy request failed")
		if forward.IsNetwork(err) {
			respond.Error(w, http.StatusInternalServerError, msgRequestFailed, err.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, msgServerError, err.Error())
		return
	}

	relay(w, r, resp, event)

	event.Info().
		Int("status", resp.StatusCode).
		Str("upstream", resolved.BaseURL.Redacted()).
		Dur("duration", time.Since(start)).
		Msg("request proxied")
}

// readBody reads and normalises the inbound body, writing the error response
// itself when that fails.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, event zerolog.Logger) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			event.Warn().Int64("limit", tooLarge.Limit).Msg("request body too large")
			respond.Error(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge, "")
			return nil, err
		}
		event.Warn().Err(err).Msg("read request body failed")
		respond.Error(w, http.StatusBadRequest, msgInvalidBody, err.Error())
		return nil, err
	}

	body, err := forward.NormalizeBody(r.Header.Get("Content-Type"), raw)
	if err != nil {
		event.Warn().Err(err).Msg("rejected request body")
		respond.Error(w, http.StatusBadRequest, msgInvalidBody, err.Error())
		return nil, err
	}
	return body, nil
}

// remainderPath returns the escaped path after /proxy/{target}, keeping a
// leading slash.
func remainderPath(r *http.Request) string {
	parts := strings.SplitN(r.URL.EscapedPath(), "/", 4)
	if len(parts) < 4 {
		return "/"
	}
	return "/" + parts[3]
}

// queryValues splits a raw query into its pairs without dropping any.
// Unlike url.ParseQuery it keeps pairs holding ";" and falls back to the raw
// text when a key or value is not a valid escape.
func queryValues(raw string) url.Values {
	q := make(url.Values)
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k := unescapeLenient(key)
		q[k] = append(q[k], unescapeLenient(value))
	}
	return q
}

func unescapeLenient(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// relay mirrors the upstream status, headers and body. Upstream headers
// replace any the gateway set already, CORS headers included.
func relay(w http.ResponseWriter, r *http.Request, resp *forward.Response, event zerolog.Logger) {
	h := w.Header()
	for k, vv := range resp.Header {
		h[k] = vv
	}

	withBody := r.Method != http.MethodHead && bodyAllowedForStatus(resp.StatusCode)
	if withBody {
		h.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	}
	w.WriteHeader(resp.StatusCode)

	if !withBody {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		event.Error().
			Err(err).
			Int("status", resp.StatusCode).
			Msg("write relayed response failed")
	}
}

func bodyAllowedForStatus(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
