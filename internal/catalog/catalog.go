// Package catalog loads, caches and indexes the lecture catalog.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/schedule"
)

// State is the lifecycle stage of a Catalog.
type State int

// Catalog lifecycle: empty -> loading -> loaded. A failed load returns to empty.
const (
	StateEmpty State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "empty"
	}
}

const loadKey = "catalog"

// Catalog is a memoized, single-flight view of the lecture catalog. Entries
// are built once per load and must be treated as read-only by callers.
type Catalog struct {
	source Source
	logger *zap.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	state   State
	entries []model.CatalogEntry
	majors  []string
}

// New returns an empty Catalog backed by source.
func New(source Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, logger: logger}
}

// Load returns the catalog, fetching it on first use. Callers arriving while a
// fetch is in flight wait for that same fetch. The fetch itself is not tied to
// ctx: a caller giving up does not abort it for the others.
func (c *Catalog) Load(ctx context.Context) ([]model.CatalogEntry, error) {
	if entries, ok := c.loaded(); ok {
		return entries, nil
	}
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(loadKey, func() (any, error) {
		if entries, ok := c.loaded(); ok {
			return entries, nil
		}
		return c.load(fetchCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.CatalogEntry), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State reports the current lifecycle stage.
func (c *Catalog) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Majors returns the distinct majors in first-seen catalog order, or nil
// before the catalog is loaded.
func (c *Catalog) Majors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.majors...)
}

func (c *Catalog) loaded() ([]model.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries, c.state == StateLoaded
}

func (c *Catalog) load(ctx context.Context) ([]model.CatalogEntry, error) {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	start := time.Now()
	c.logger.Info("catalog load started")
	lectures, err := c.fetchAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateEmpty
		c.logger.Error("catalog load failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}
	c.entries = BuildEntries(lectures)
	c.majors = DistinctMajors(c.entries)
	c.state = StateLoaded
	c.logger.Info("catalog load finished",
		zap.Int("records", len(c.entries)),
		zap.Int("majors", len(c.majors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c.entries, nil
}

func (c *Catalog) fetchAll(ctx context.Context) ([]model.Lecture, error) {
	parts := make([][]model.Lecture, len(Collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, coll := range Collections {
		i, coll := i, coll
		g.Go(func() error {
			lectures, err := c.source.Fetch(gctx, coll)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", coll, err)
			}
			c.logger.Debug("collection fetched", zap.String("collection", string(coll)), zap.Int("records", len(lectures)))
			parts[i] = lectures
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]model.Lecture, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// BuildEntries derives the search data of every record: parsed blocks carrying
// the lecture snapshot, and lowercased title and id keys.
func BuildEntries(lectures []model.Lecture) []model.CatalogEntry {
	entries := make([]model.CatalogEntry, len(lectures))
	for i, l := range lectures {
		var blocks []model.ScheduleBlock
		if l.Schedule != "" {
			blocks = schedule.Parse(l.Schedule)
			summary := l.Summary()
			for j := range blocks {
				blocks[j].Lecture = summary
			}
		}
		entries[i] = model.CatalogEntry{
			Lecture:  l,
			Blocks:   blocks,
			TitleKey: strings.ToLower(l.Title),
			IDKey:    strings.ToLower(l.ID),
		}
	}
	return entries
}

// DistinctMajors returns each major once, in first-seen order.
func DistinctMajors(entries []model.CatalogEntry) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		if _, ok := seen[e.Major]; ok {
			continue
		}
		seen[e.Major] = struct{}{}
		out = append(out, e.Major)
	}
	return out
}

// MajorDisplay renders a raw major for a choice list: "<p>" separators become
// spaces.
func MajorDisplay(major string) string {
	return strings.ReplaceAll(major, "<p>", " ")
}

// MajorTag renders a raw major for a compact tag: the last "<p>" segment.
func MajorTag(major string) string {
	parts := strings.Split(major, "<p>")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return major
}
