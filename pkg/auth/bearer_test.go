// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package auth

import (
	"net/http"
	"testing"
)

func TestBearerAttach(t *testing.T) {
	tests := []struct {
		name  string
		token string
		prior string
		want  string
	}{
		{name: "token", token: "abc", want: "Bearer abc"},
		{name: "no token", token: "", want: ""},
		{name: "no token drops prior header", token: "", prior: "Basic dXNlcjpwYXNz", want: ""},
		{name: "token replaces prior header", token: "xyz", prior: "Bearer old", want: "Bearer xyz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := make(http.Header)
			if tc.prior != "" {
				h.Set(HeaderAuthorization, tc.prior)
			}

			NewBearer(tc.token).Attach(h)

			if got := h.Get(HeaderAuthorization); got != tc.want {
				t.Fatalf("Authorization header mismatch: got %q, want %q", got, tc.want)
			}
			if tc.want == "" {
				if _, ok := h[HeaderAuthorization]; ok {
					t.Fatalf("expected Authorization header to be absent, got %v", h.Values(HeaderAuthorization))
				}
			}
		})
	}
}

func TestBearerPresentNil(t *testing.T) {
	var b *Bearer
	if b.Present() {
		t.Fatal("nil bearer must not report a token")
	}
}
