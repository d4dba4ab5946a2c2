// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package auth

import (
	"net/http"
)

const (
	// HeaderAuthorization is the header Bearer writes.
	HeaderAuthorization = "Authorization"
	schemeBearer        = "Bearer"
)

// Bearer injects an Authorization header carrying a per-target token.
type Bearer struct {
	Token string
}

// NewBearer constructs a Bearer for the given token as is. An empty token
// means no credential.
func NewBearer(token string) *Bearer {
	return &Bearer{Token: token}
}

// Present reports whether a token is available for injection.
func (b *Bearer) Present() bool {
	return b != nil && b.Token != ""
}

// Attach sets the Authorization header on h when a token is present and
// removes any existing one otherwise, so no inbound credential can leak through.
func (b *Bearer) Attach(h http.Header) {
	if !b.Present() {
		h.Del(HeaderAuthorization)
		return
	}
	h.Set(HeaderAuthorization, schemeBearer+" "+b.Token)
}
