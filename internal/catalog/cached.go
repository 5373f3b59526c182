package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/store"
)

// PayloadCache stores fetched collections between runs.
type PayloadCache interface {
	GetCollection(ctx context.Context, name string) (store.Collection, bool, error)
	PutCollection(ctx context.Context, name string, fetchedAt time.Time, lectures []model.Lecture) error
}

// CachedSource is a read-through cache in front of another Source. Copies
// younger than TTL are served without touching upstream; a TTL of zero or less
// never expires. When upstream fails, a stale copy is served if one exists.
type CachedSource struct {
	Upstream Source
	Cache    PayloadCache
	TTL      time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

// Fetch implements Source.
func (s *CachedSource) Fetch(ctx context.Context, c Collection) ([]model.Lecture, error) {
	logger := s.logger().With(zap.String("collection", string(c)))
	now := s.now()

	cached, ok, err := s.Cache.GetCollection(ctx, string(c))
	if err != nil {
		logger.Warn("failed to read catalog cache", zap.Error(err))
		ok = false
	}
	if ok && (s.TTL <= 0 || now.Sub(cached.FetchedAt) < s.TTL) {
		logger.Debug("catalog cache hit", zap.Time("fetched_at", cached.FetchedAt))
		return cached.Lectures, nil
	}

	lectures, err := s.Upstream.Fetch(ctx, c)
	if err != nil {
		if ok {
			logger.Warn("upstream fetch failed, serving stale cache",
				zap.Error(err),
				zap.Time("fetched_at", cached.FetchedAt),
			)
			return cached.Lectures, nil
		}
		return nil, err
	}
	if perr := s.Cache.PutCollection(ctx, string(c), now, lectures); perr != nil {
		logger.Warn("failed to write catalog cache", zap.Error(perr))
	}
	logger.Debug("catalog cache refreshed", zap.Int("records", len(lectures)))
	return lectures, nil
}

func (s *CachedSource) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CachedSource) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
