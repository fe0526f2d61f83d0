package feed

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/cache"
	"github.com/emilythestrangee/forum/backend/internal/logger"
)

const (
	defaultTrendingLimit = 10
	maxTrendingLimit     = 20
)

type StatsReport struct {
	TimeFrame   TimeFrame `json:"time_frame"`
	Community   string    `json:"community"`
	Statistics  Stats     `json:"statistics"`
	GeneratedAt int64     `json:"generated_at"`
}

type TrendingReport struct {
	TimeFrame           TimeFrame           `json:"time_frame"`
	TrendingCommunities []TrendingCommunity `json:"trending_communities"`
	GeneratedAt         int64               `json:"generated_at"`
}

type Service struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Service)

// WithCache caches the stats and trending reports for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		cache: cache.Noop{},
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed returns one page of the ranked feed. Unrecognised strategies and time
// frames are replaced by their defaults rather than rejected.
func (s *Service) Feed(ctx context.Context, raw RawParams) (Page, error) {
	pl := NewPlan(NormalizeParams(raw), s.now())

	rows, err := s.repo.Feed(ctx, pl)
	if err != nil {
		return Page{}, apperr.Internal("Failed to fetch posts feed", err)
	}

	return Page{
		Posts:    Enrich(rows, pl.Now),
		Metadata: NewMetadata(pl, len(rows)),
	}, nil
}

func (s *Service) Stats(ctx context.Context, community, timeFrame string) (StatsReport, error) {
	tf := ParseTimeFrame(timeFrame)
	community = NormalizeCommunity(community)
	key := "feed:stats:" + string(tf) + ":" + community

	var report StatsReport
	err := s.cached(ctx, key, &report, func() (interface{}, error) {
		if community != "" {
			ok, err := s.repo.CommunityExists(ctx, community)
			if err != nil {
				return nil, apperr.Internal("Failed to fetch feed statistics", err)
			}
			if !ok {
				return nil, apperr.NotFound("Community not found")
			}
		}

		now := s.now()
		stats, err := s.repo.Stats(ctx, community, since(tf, now))
		if err != nil {
			return nil, apperr.Internal("Failed to fetch feed statistics", err)
		}

		label := community
		if label == "" {
			label = "all"
		}
		return StatsReport{TimeFrame: tf, Community: label, Statistics: stats, GeneratedAt: now.Unix()}, nil
	})
	return report, err
}

func (s *Service) Trending(ctx context.Context, timeFrame, limit string) (TrendingReport, error) {
	tf := ParseTimeFrame(timeFrame)
	n, err := strconv.Atoi(limit)
	if err != nil {
		n = defaultTrendingLimit
	}
	n = min(max(n, 1), maxTrendingLimit)
	key := "feed:trending:" + string(tf) + ":" + strconv.Itoa(n)

	var report TrendingReport
	err = s.cached(ctx, key, &report, func() (interface{}, error) {
		now := s.now()
		communities, err := s.repo.TrendingCommunities(ctx, since(tf, now), now, n)
		if err != nil {
			return nil, apperr.Internal("Failed to fetch trending data", err)
		}
		return TrendingReport{TimeFrame: tf, TrendingCommunities: communities, GeneratedAt: now.Unix()}, nil
	})
	return report, err
}

// cached fills dst from the cache under key, or from load on a miss. Cache
// failures are logged and never fail the request.
func (s *Service) cached(ctx context.Context, key string, dst interface{}, load func() (interface{}, error)) error {
	b, err := s.cache.Get(ctx, key)
	if err == nil {
		if err := json.Unmarshal(b, dst); err == nil {
			return nil
		}
		logger.WarnWithContext(ctx, "discarding undecodable cache entry %s", key)
	} else if !errors.Is(err, cache.ErrKeyNotFound) {
		logger.WarnWithContext(ctx, "cache get %s: %v", key, err)
	}

	v, err := load()
	if err != nil {
		return err
	}
	b, err = json.Marshal(v)
	if err != nil {
		return apperr.Internal("Failed to encode response", err)
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		logger.WarnWithContext(ctx, "cache set %s: %v", key, err)
	}
	return json.Unmarshal(b, dst)
}

func since(tf TimeFrame, now time.Time) *time.Time {
	cutoff, ok := tf.Cutoff(now)
	if !ok {
		return nil
	}
	return &cutoff
}
