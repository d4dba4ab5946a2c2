// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/go-core-stack/crossenv-gateway/pkg/respond"
)

// Recover turns a handler panic into the gateway's internal error response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("handler panicked")
			respond.Error(w, http.StatusInternalServerError, "Server error", fmt.Sprint(rec))
		}()

		next.ServeHTTP(w, r)
	})
}
