package planner

import (
	"maps"

	"go.uber.org/zap"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/model"
)

// NewSource builds the catalog source described by cfg: a local directory when
// Dir is set, otherwise HTTP. A non-nil cache wraps it in a CachedSource.
func NewSource(cfg model.Config, cache catalog.PayloadCache, logger *zap.Logger) catalog.Source {
	paths := maps.Clone(catalog.DefaultPaths)
	if cfg.Majors != "" {
		paths[catalog.Majors] = cfg.Majors
	}
	if cfg.LiberalArts != "" {
		paths[catalog.LiberalArts] = cfg.LiberalArts
	}

	var src catalog.Source
	if cfg.Dir != "" {
		dir := catalog.NewDirSource(cfg.Dir)
		dir.Paths = paths
		src = dir
	} else {
		web := catalog.NewHTTPSource(cfg.BaseURL, cfg.Timeout)
		web.Paths = paths
		src = web
	}
	if cache == nil {
		return src
	}
	return &catalog.CachedSource{
		Upstream: src,
		Cache:    cache,
		TTL:      cfg.CacheTTL,
		Logger:   logger,
	}
}
