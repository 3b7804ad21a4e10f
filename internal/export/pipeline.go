// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package export orchestrates one full export run.

Pipeline stages, in order:

 1. Bulk read of raw rows and dimension aggregates from the source store.
 2. Parallel row normalization over partitions of the row list (each row is
    independent), with dropped-row accounting.
 3. Barrier: the recommender's cast/tag/circle/category indexes need the
    complete normalized catalog before any related-shelf is computed.
 4. Projection: search index, pagination plan, related shelves, ranking
    views, feed and sitemap.
 5. Snapshot write + atomic publish (and optionally the Redis pointer).

A run either publishes a complete snapshot or changes nothing: query
failures, write failures, an exceeded drop-rate ceiling and context
cancellation all abort before the pointer swap.
*/
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/internal/pages"
	"github.com/taibuivan/nijidex/internal/related"
	"github.com/taibuivan/nijidex/internal/search"
	"github.com/taibuivan/nijidex/internal/snapshot"
	"github.com/taibuivan/nijidex/pkg/pagination"
)

// Options tune one export run.
type Options struct {
	// Workers bounds the parallel normalization goroutines. Values < 1
	// fall back to 1.
	Workers int

	// MaxDropRate is the sanity ceiling on dropped rows (0..1). A run
	// exceeding it fails before publishing; the threshold guards against
	// exporting a snapshot from obviously broken source data.
	MaxDropRate float64

	// BaseURL is the public site origin for sitemap/feed links.
	BaseURL string

	// Policy is the shared paging policy.
	Policy pagination.Policy

	SkipFeed    bool
	SkipSitemap bool

	// DryRun executes every stage but skips the snapshot write and publish.
	DryRun bool

	// Now supplies the export timestamp; nil means time.Now. Price windows,
	// the feed and the sitemap all evaluate against this single instant so
	// one run is internally consistent.
	Now func() time.Time

	// Publish, when set, is invoked with the new version id after the
	// on-disk pointer swap (e.g. the Redis cut-over).
	Publish func(ctx context.Context, version string) error
}

// Result reports per-stage counts for operational visibility.
type Result struct {
	Version       string
	Rows          int
	Works         int
	Dropped       int
	SearchRecords int
	Groups        int
	PageFiles     int
	RelatedSets   int
	Duration      time.Duration
}

// Runner executes export runs against a store and a snapshot writer.
type Runner struct {
	store  catalog.Store
	writer *snapshot.Writer
	log    *slog.Logger
	opts   Options
}

// NewRunner wires a runner. The version generator is injected per run via
// the version argument of [Runner.Run] so tests can pin it.
func NewRunner(store catalog.Store, writer *snapshot.Writer, log *slog.Logger, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Policy.PageSize == 0 {
		opts.Policy = pagination.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{store: store, writer: writer, log: log, opts: opts}
}

// Run executes one export under the given snapshot version id.
func (r *Runner) Run(ctx context.Context, version string) (*Result, error) {
	started := r.opts.Now()
	now := started

	// ── Stage 1: bulk read ────────────────────────────────────────────────
	rows, err := r.store.ListWorkRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: read works: %w", err)
	}
	circles, err := r.store.ListCircles(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: read circles: %w", err)
	}
	castNames, err := r.store.ListCastNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: read cast names: %w", err)
	}
	tagNames, err := r.store.ListTagNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: read tag names: %w", err)
	}
	r.log.Info("source read complete",
		slog.Int("rows", len(rows)),
		slog.Int("circles", len(circles)),
		slog.Int("cast", len(castNames)),
		slog.Int("tags", len(tagNames)),
	)

	// ── Stage 2: parallel normalization ───────────────────────────────────
	works, dropped, err := r.normalize(ctx, rows, now)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rate := float64(dropped) / float64(len(rows))
		if rate > r.opts.MaxDropRate {
			return nil, fmt.Errorf("export: drop rate %.2f exceeds ceiling %.2f (%d of %d rows)",
				rate, r.opts.MaxDropRate, dropped, len(rows))
		}
	}
	r.log.Info("normalization complete",
		slog.Int("works", len(works)),
		slog.Int("dropped", dropped),
	)

	// ── Stage 3/4: projections (after the full-catalog barrier) ───────────
	index := search.BuildIndex(works)
	plan := pages.BuildPlan(works, r.opts.Policy)
	recommender := related.NewRecommender(works)

	relatedViews, err := r.buildRelated(ctx, works, recommender)
	if err != nil {
		return nil, err
	}

	snap := &snapshot.Snapshot{
		Version:     version,
		GeneratedAt: now,
		SearchIndex: index,
		Plan:        plan,
		Related:     relatedViews,
		Views:       catalog.BuildRankedViews(works),
		Listings: snapshot.Listings{
			Circles: circles,
			Cast:    castNames,
			Tags:    tagNames,
		},
	}
	if !r.opts.SkipFeed {
		snap.Feed = snapshot.BuildFeed(works, r.opts.BaseURL, now)
	}
	if !r.opts.SkipSitemap {
		snap.Sitemap = snapshot.BuildSitemap(works, castNames, tagNames, circles, r.opts.BaseURL, now)
	}

	result := &Result{
		Version:       version,
		Rows:          len(rows),
		Works:         len(works),
		Dropped:       dropped,
		SearchRecords: len(index),
		Groups:        len(plan.Groups),
		RelatedSets:   len(relatedViews),
	}
	snap.Counts = map[string]int{
		"rows":           result.Rows,
		"works":          result.Works,
		"dropped":        result.Dropped,
		"search_records": result.SearchRecords,
		"groups":         result.Groups,
		"related_sets":   result.RelatedSets,
		"circles":        len(circles),
		"cast":           len(castNames),
		"tags":           len(tagNames),
	}

	// ── Stage 5: write + publish ──────────────────────────────────────────
	if r.opts.DryRun {
		r.log.Info("dry run, skipping snapshot write", slog.String("version", version))
		result.Duration = r.opts.Now().Sub(started)
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("export: cancelled before publish: %w", err)
	}

	pageFiles, err := r.writer.Write(snap)
	if err != nil {
		return nil, fmt.Errorf("export: write snapshot: %w", err)
	}
	result.PageFiles = pageFiles

	if r.opts.Publish != nil {
		if err := r.opts.Publish(ctx, version); err != nil {
			return nil, fmt.Errorf("export: publish version pointer: %w", err)
		}
	}

	result.Duration = r.opts.Now().Sub(started)
	return result, nil
}

// normalize fans row conversion out over contiguous partitions. Results are
// written into per-row slots so the output order matches the input order
// regardless of worker scheduling.
func (r *Runner) normalize(ctx context.Context, rows []catalog.WorkRow, now time.Time) ([]*catalog.Work, int, error) {
	slots := make([]*catalog.Work, len(rows))
	drops := make([]int, r.opts.Workers)

	group, groupCtx := errgroup.WithContext(ctx)
	chunk := (len(rows) + r.opts.Workers - 1) / r.opts.Workers

	for worker := 0; worker < r.opts.Workers; worker++ {
		start := worker * chunk
		if start >= len(rows) {
			break
		}
		end := min(start+chunk, len(rows))
		worker := worker

		group.Go(func() error {
			for i := start; i < end; i++ {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				w, err := catalog.NormalizeRow(rows[i], now)
				switch err {
				case nil:
					slots[i] = w
				case catalog.ErrUnavailable:
					// Delisted, filtered silently.
				case catalog.ErrMissingID, catalog.ErrMissingTitle:
					drops[worker]++
				default:
					return fmt.Errorf("export: normalize row %d: %w", i, err)
				}
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, 0, err
	}

	works := make([]*catalog.Work, 0, len(rows))
	for _, w := range slots {
		if w != nil {
			works = append(works, w)
		}
	}
	dropped := 0
	for _, d := range drops {
		dropped += d
	}
	return works, dropped, nil
}

// buildRelated computes every work's related shelf. Shelves are independent
// once the recommender indexes exist, so they fan out the same way
// normalization does.
func (r *Runner) buildRelated(ctx context.Context, works []*catalog.Work, rec *related.Recommender) (map[int][]catalog.View, error) {
	shelves := make([][]catalog.View, len(works))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.Workers)

	for i, w := range works {
		i, w := i, w
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			shelves[i] = catalog.Views(rec.Recommend(w, related.DefaultLimit))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("export: build related shelves: %w", err)
	}

	out := make(map[int][]catalog.View, len(works))
	for i, w := range works {
		out[w.ID] = shelves[i]
	}
	return out, nil
}
