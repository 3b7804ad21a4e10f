// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package snapshot serializes one export run into the on-disk layout
// consumed by the static renderer and the runtime loader, and publishes it
// atomically.
//
// # Atomicity
//
// Every artifact is written under a hidden staging directory first. Only
// after the last write succeeds is the staging directory renamed to its
// version name and the "current" pointer swapped (temp file + rename).
// Readers therefore see either the previous complete snapshot or the new
// complete snapshot, never a partial one. Any I/O error discards staging
// and leaves the pointer untouched.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/internal/pages"
	"github.com/taibuivan/nijidex/internal/search"
)

// Listings are the dimension index pages: every circle, cast name and tag
// with its work count.
type Listings struct {
	Circles []catalog.Circle    `json:"circles"`
	Cast    []catalog.NameCount `json:"cv"`
	Tags    []catalog.NameCount `json:"tags"`
}

// Manifest records what a snapshot contains and when it was generated.
type Manifest struct {
	Version     string         `json:"version"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Counts      map[string]int `json:"counts"`
}

// Snapshot is the complete artifact set of one export run, assembled in
// memory by the pipeline and handed to the writer whole.
type Snapshot struct {
	Version     string
	GeneratedAt time.Time

	SearchIndex []search.Record
	Plan        *pages.Plan
	Related     map[int][]catalog.View
	Views       catalog.RankedViews
	Listings    Listings

	// Feed and Sitemap are prerendered XML; nil skips the artifact.
	Feed    []byte
	Sitemap []byte

	Counts map[string]int
}

// Writer persists snapshots under a root directory.
type Writer struct {
	root string
	log  *slog.Logger
}

// NewWriter returns a writer rooted at dir.
func NewWriter(dir string, log *slog.Logger) *Writer {
	return &Writer{root: dir, log: log}
}

// Write persists the snapshot and publishes it. It returns the number of
// page files written. On any error nothing is published and the previous
// snapshot stays current.
func (wr *Writer) Write(snap *Snapshot) (pageFiles int, err error) {
	staging := filepath.Join(wr.root, ".staging-"+snap.Version)
	versionDir := filepath.Join(wr.root, snap.Version)

	if err := os.MkdirAll(staging, 0o755); err != nil {
		return 0, fmt.Errorf("snapshot: create staging: %w", err)
	}
	// Staging is discarded on any failure so a broken run leaves no debris.
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()

	if err = writeJSON(filepath.Join(staging, SearchIndexFile), snap.SearchIndex); err != nil {
		return 0, err
	}
	if err = writeJSON(filepath.Join(staging, ViewsFile), snap.Views); err != nil {
		return 0, err
	}
	if err = writeJSON(filepath.Join(staging, ListingsFile), snap.Listings); err != nil {
		return 0, err
	}

	if pageFiles, err = wr.writePages(staging, snap.Plan); err != nil {
		return 0, err
	}

	if err = wr.writeRelated(staging, snap.Related); err != nil {
		return 0, err
	}

	if snap.Feed != nil {
		if err = writeRaw(filepath.Join(staging, FeedFile), snap.Feed); err != nil {
			return 0, err
		}
	}
	if snap.Sitemap != nil {
		if err = writeRaw(filepath.Join(staging, SitemapFile), snap.Sitemap); err != nil {
			return 0, err
		}
	}

	manifest := Manifest{Version: snap.Version, GeneratedAt: snap.GeneratedAt, Counts: snap.Counts}
	if err = writeJSON(filepath.Join(staging, ManifestFile), manifest); err != nil {
		return 0, err
	}

	// Everything is on disk; make the version directory appear whole.
	if err = os.Rename(staging, versionDir); err != nil {
		return 0, fmt.Errorf("snapshot: promote staging: %w", err)
	}

	if err = wr.publish(snap.Version); err != nil {
		// The version directory exists but was never pointed at; remove it
		// so a retry starts clean.
		_ = os.RemoveAll(versionDir)
		return 0, err
	}

	wr.log.Info("snapshot published",
		slog.String("version", snap.Version),
		slog.String("dir", versionDir),
		slog.Int("page_files", pageFiles),
	)

	return pageFiles, nil
}

// Current resolves the published snapshot version under root, or "" when
// none has been published yet.
func Current(root string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(root, CurrentPointer))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("snapshot: read current pointer: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (wr *Writer) writePages(staging string, plan *pages.Plan) (int, error) {
	written := 0
	for _, g := range plan.Overflow() {
		groupDir := filepath.Join(staging, DataDir, string(g.Dimension), EscapeGroupName(g.Name))
		if err := os.MkdirAll(groupDir, 0o755); err != nil {
			return 0, fmt.Errorf("snapshot: create group dir: %w", err)
		}

		total := g.PageCount(plan.Policy)
		for page := 1; page <= total; page++ {
			views := catalog.Views(g.Page(page, plan.Policy))
			file := filepath.Join(groupDir, fmt.Sprintf("%d.json", page))
			if err := writeJSON(file, views); err != nil {
				return 0, err
			}
			written++
		}
	}
	return written, nil
}

func (wr *Writer) writeRelated(staging string, related map[int][]catalog.View) error {
	if len(related) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(staging, RelatedDir), 0o755); err != nil {
		return fmt.Errorf("snapshot: create related dir: %w", err)
	}
	for workID, views := range related {
		if err := writeJSON(filepath.Join(staging, RelatedPath(workID)), views); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", filepath.Base(path), err)
	}
	return writeRaw(path, data)
}

func writeRaw(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// publish swaps the current pointer via temp file + rename, the only
// mutation readers can observe.
func (wr *Writer) publish(version string) error {
	tmp := filepath.Join(wr.root, CurrentPointer+".tmp")
	if err := os.WriteFile(tmp, []byte(version+"\n"), 0o644); err != nil {
		return fmt.Errorf("snapshot: write pointer temp: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(wr.root, CurrentPointer)); err != nil {
		return fmt.Errorf("snapshot: swap pointer: %w", err)
	}
	return nil
}
