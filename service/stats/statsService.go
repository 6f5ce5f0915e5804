package statssvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"bookmarket/authz"
	"bookmarket/model"
	statsrepo "bookmarket/repository/stats"

	"github.com/go-redis/redis/v8"
)

type ErrCode string

const ErrForbidden ErrCode = "FORBIDDEN"

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const platformKey = "stats:platform"

// Dashboard bundles everything the admin landing page renders.
type Dashboard struct {
	Stats          *model.PlatformStats  `json:"stats"`
	ActivityChart  []model.ActivityPoint `json:"activity_chart"`
	TopBooks       []model.TopBook       `json:"top_books"`
	TopCategories  []model.TopCategory   `json:"top_categories"`
	TopOwners      []model.TopOwner      `json:"top_owners"`
	TopUsers       []model.TopUser       `json:"top_users"`
	RecentActivity []model.ActivityEntry `json:"recent_activity"`
}

type Service interface {
	Platform(ctx context.Context, actor model.Actor) (*model.PlatformStats, error)
	Dashboard(ctx context.Context, actor model.Actor) (*Dashboard, error)
}

type service struct {
	stats statsrepo.Repo
	cache *redis.Client // nil when Redis is unavailable
	ttl   time.Duration
	log   *slog.Logger
}

func New(stats statsrepo.Repo, cache *redis.Client, ttl time.Duration, log *slog.Logger) Service {
	return &service{stats: stats, cache: cache, ttl: ttl, log: log}
}

// Platform serves the headline numbers cache-aside: the aggregate query
// touches every table, so a short TTL keeps the dashboard cheap without
// going stale for long.
func (s *service) Platform(ctx context.Context, actor model.Actor) (*model.PlatformStats, error) {
	if !authz.Can(actor, authz.Read, authz.Platform{}) {
		return nil, codedError{ErrForbidden}
	}

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, platformKey).Result()
		if err == nil {
			var cached model.PlatformStats
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("stats cache read failed", "err", err)
		}
	}

	st, err := s.stats.Platform(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(st); err == nil {
			if err := s.cache.Set(ctx, platformKey, raw, s.ttl).Err(); err != nil {
				s.log.Warn("stats cache write failed", "err", err)
			}
		}
	}
	return st, nil
}

func (s *service) Dashboard(ctx context.Context, actor model.Actor) (*Dashboard, error) {
	st, err := s.Platform(ctx, actor)
	if err != nil {
		return nil, err
	}

	chart, err := s.stats.ActivityChart(ctx)
	if err != nil {
		return nil, err
	}
	books, err := s.stats.TopBooks(ctx, 5)
	if err != nil {
		return nil, err
	}
	categories, err := s.stats.TopCategories(ctx, 5)
	if err != nil {
		return nil, err
	}
	owners, err := s.stats.TopOwners(ctx, 5)
	if err != nil {
		return nil, err
	}
	users, err := s.stats.TopUsers(ctx, 5)
	if err != nil {
		return nil, err
	}
	recent, err := s.stats.RecentActivity(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Stats:          st,
		ActivityChart:  chart,
		TopBooks:       books,
		TopCategories:  categories,
		TopOwners:      owners,
		TopUsers:       users,
		RecentActivity: recent,
	}, nil
}
