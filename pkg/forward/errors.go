// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package forward

import (
	"errors"
	"net/url"
)

// Kind classifies a forwarding failure for the HTTP boundary.
type Kind int

const (
	// KindInternal covers failures while building or relaying the request.
	KindInternal Kind = iota
	// KindNetwork covers transport failures talking to the upstream.
	KindNetwork
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	default:
		return "internal"
	}
}

// Error wraps a forwarding failure with its Kind.
type Error struct {
	Kind Kind  // Kind selects the error shape emitted downstream.
	Err  error // Err is the underlying cause.
}

// Error returns the cause text; it is relayed to the caller as "details".
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is / errors.As checks.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var fwdErr *Error
	return errors.As(err, &fwdErr) && fwdErr.Kind == KindNetwork
}

func internalError(err error) error {
	return &Error{Kind: KindInternal, Err: err}
}

// networkError strips the url.Error envelope added by http.Client so the
// details carry the transport message rather than the request line.
func networkError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	return &Error{Kind: KindNetwork, Err: err}
}
