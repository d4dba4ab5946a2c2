// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/go-core-stack/crossenv-gateway/pkg/respond"
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type healthBody struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Server    string `json:"server"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, healthBody{
		Status:    "ok",
		Timestamp: s.now().UTC().Format(isoMillis),
		Server:    s.cfg.ServerName,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusNotFound, respond.ErrorBody{
		Error: "404 Not Found",
		Path:  r.URL.Path,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, s.cfg.IndexFile)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/"))
}

// serveFile serves a regular file from the static directory. Directories and
// dotfiles are reported as not found.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	if s.static == nil || name == "" || !fs.ValidPath(name) || hasDotSegment(name) {
		s.handleNotFound(w, r)
		return
	}

	info, err := fs.Stat(s.static, name)
	if err != nil || info.IsDir() {
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Str("file", name).Msg("static file not found")
		}
		s.handleNotFound(w, r)
		return
	}

	http.ServeFileFS(w, r, s.static, name)
}

func hasDotSegment(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
