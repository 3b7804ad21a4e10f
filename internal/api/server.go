// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api serves published snapshots over HTTP.

# DESIGN

Every request resolves the snapshot root's `current` pointer and serves
the artifact from the version directory it names, so an export run's
pointer swap takes effect without a restart and in-flight requests keep
reading the version they started on.
*/
package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/nijidex/internal/pages"
	"github.com/taibuivan/nijidex/internal/platform/middleware"
	"github.com/taibuivan/nijidex/internal/snapshot"
)

// Server exposes the snapshot artifacts of a snapshot root.
type Server struct {
	root string
	log  *slog.Logger
}

// NewServer returns a server reading snapshots under root.
func NewServer(root string, log *slog.Logger) *Server {
	return &Server{root: root, log: log}
}

// Routes assembles the router with the platform middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(s.log))
	r.Use(middleware.PanicRecovery(s.log))

	r.Get("/health", s.handleHealth)

	for _, name := range []string{
		snapshot.SearchIndexFile,
		snapshot.ViewsFile,
		snapshot.ListingsFile,
		snapshot.ManifestFile,
		snapshot.FeedFile,
		snapshot.SitemapFile,
	} {
		r.Get("/"+name, s.handleArtifact(name))
	}

	r.Get("/data/{dimension}/{name}/{page}", s.handlePage)
	r.Get("/related/{file}", s.handleRelated)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := snapshot.Current(s.root)
	if err != nil || version == "" {
		s.log.Warn("health check: no published snapshot")
		http.Error(w, "no published snapshot", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleArtifact(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveFile(w, r, name)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	dim := pages.Dimension(chi.URLParam(r, "dimension"))
	switch dim {
	case pages.ByTag, pages.ByCast, pages.ByCircle:
	default:
		http.NotFound(w, r)
		return
	}

	// The segment may arrive encoded or decoded depending on the client;
	// normalize to the percent-encoded form the on-disk directory uses.
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	page := chi.URLParam(r, "page")
	if !strings.HasSuffix(page, ".json") {
		http.NotFound(w, r)
		return
	}

	rel := filepath.Join(snapshot.DataDir, string(dim), snapshot.EscapeGroupName(name), filepath.Base(page))
	s.serveFile(w, r, rel)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if !strings.HasSuffix(file, ".json") {
		http.NotFound(w, r)
		return
	}
	s.serveFile(w, r, filepath.Join(snapshot.RelatedDir, filepath.Base(file)))
}

// serveFile resolves the current version directory and serves one artifact
// out of it. http.ServeFile handles content type, range requests and
// conditional headers.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, rel string) {
	version, err := snapshot.Current(s.root)
	if err != nil || version == "" {
		http.Error(w, "no published snapshot", http.StatusServiceUnavailable)
		return
	}

	full := filepath.Join(s.root, version, rel)
	if _, err := os.Stat(full); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}
