// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package target maps the logical upstream names used by the gateway routes
// onto concrete base URLs and bearer tokens, honouring per-request override
// headers sent by the browser page.
package target

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Name identifies one of the two upstream environments.
type Name string

const (
	// From is the source environment.
	From Name = "from"
	// To is the destination environment.
	To Name = "to"
)

// Request headers the browser page uses to override a target per call.
const (
	// HeaderFromURL replaces the default source base URL.
	HeaderFromURL = "x-proxy-from-url"
	// HeaderToURL replaces the default destination base URL.
	HeaderToURL = "x-proxy-to-url"
	// HeaderFromToken carries the bearer token for the source.
	HeaderFromToken = "x-token-from"
	// HeaderToToken carries the bearer token for the destination.
	HeaderToToken = "x-token-to"
)

var (
	// ErrInvalidTarget is returned for any target name other than From or To.
	ErrInvalidTarget = errors.New(`invalid target. Use "from" or "to"`)
	// ErrInvalidOverride is returned when an override header is not an absolute http(s) URL.
	ErrInvalidOverride = errors.New("invalid base url override")
)

// Config describes one upstream environment. Instances are built once at
// startup and only read afterwards.
type Config struct {
	Name           Name
	DefaultBaseURL *url.URL
	OverrideHeader string
	TokenHeader    string
}

// Resolved is the per-request view of a target after overrides are applied.
type Resolved struct {
	Name      Name
	BaseURL   *url.URL
	AuthToken string
}

// HasToken reports whether a bearer token should be sent upstream.
func (r Resolved) HasToken() bool {
	return r.AuthToken != ""
}

// Resolver holds the two fixed target configurations.
type Resolver struct {
	targets map[Name]Config
}

// NewResolver builds a Resolver from the default source and destination base URLs.
func NewResolver(fromURL, toURL *url.URL) (*Resolver, error) {
	for name, u := range map[Name]*url.URL{From: fromURL, To: toURL} {
		if err := validateBase(u); err != nil {
			return nil, fmt.Errorf("default %s url: %w", name, err)
		}
	}

	return &Resolver{
		targets: map[Name]Config{
			From: {
				Name:           From,
				DefaultBaseURL: cloneURL(fromURL),
				OverrideHeader: HeaderFromURL,
				TokenHeader:    HeaderFromToken,
			},
			To: {
				Name:           To,
				DefaultBaseURL: cloneURL(toURL),
				OverrideHeader: HeaderToURL,
				TokenHeader:    HeaderToToken,
			},
		},
	}, nil
}

// Config returns the static configuration for name.
func (r *Resolver) Config(name Name) (Config, bool) {
	cfg, ok := r.targets[name]
	return cfg, ok
}

// Resolve applies the override and token headers in h to the target called
// name. Header values are trimmed, and empty or whitespace-only values count
// as absent.
func (r *Resolver) Resolve(name string, h http.Header) (Resolved, error) {
	cfg, ok := r.targets[Name(name)]
	if !ok {
		return Resolved{}, ErrInvalidTarget
	}

	base := cloneURL(cfg.DefaultBaseURL)
	if raw := headerValue(h, cfg.OverrideHeader); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return Resolved{}, fmt.Errorf("%w: %s: %v", ErrInvalidOverride, cfg.OverrideHeader, err)
		}
		if err := validateBase(u); err != nil {
			return Resolved{}, fmt.Errorf("%w: %s: %v", ErrInvalidOverride, cfg.OverrideHeader, err)
		}
		base = u
	}

	return Resolved{
		Name:      cfg.Name,
		BaseURL:   base,
		AuthToken: headerValue(h, cfg.TokenHeader),
	}, nil
}

func headerValue(h http.Header, key string) string {
	return strings.TrimSpace(h.Get(key))
}

func validateBase(u *url.URL) error {
	if u == nil {
		return errors.New("url is required")
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q must be absolute (scheme://host)", u.String())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

// cloneURL makes a shallow copy of the provided URL pointer.
func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
