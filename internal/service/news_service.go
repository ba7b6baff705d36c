package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/codecoach-api/internal/cache"
	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/pkg/news"
)

// Default news query parameters.
const (
	DefaultNewsDays  = 7
	DefaultNewsLimit = 10
)

var newsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "codecoach_news_cache_lookups_total",
	Help: "News cache lookups partitioned by outcome.",
}, []string{"outcome"})

// NewsCollector fetches and filters articles from the configured feeds.
type NewsCollector interface {
	Collect(ctx context.Context, q news.Query) ([]news.Article, error)
}

// NewsService serves aggregated news through a single cache slot.
type NewsService interface {
	Latest(ctx context.Context, query dto.NewsQuery) (dto.NewsResponse, error)
}

type newsService struct {
	collector NewsCollector
	slot      cache.Slot[dto.NewsResponse]
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	refresh   singleflight.Group
	now       func() time.Time
}

// NewNewsService constructs a news service. Any fresh entry in slot is served
// regardless of the requested days and limit; force_refresh bypasses it.
func NewNewsService(collector NewsCollector, slot cache.Slot[dto.NewsResponse], ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) NewsService {
	return &newsService{
		collector: collector,
		slot:      slot,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "news_service").Logger(),
		now:       time.Now,
	}
}

func (s *newsService) Latest(ctx context.Context, query dto.NewsQuery) (dto.NewsResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.NewsResponse{}, err
	}

	if !query.ForceRefresh {
		entry, ok, err := s.slot.Load(ctx)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("news cache read failed")
		case ok && entry.Fresh(s.now()):
			newsCacheLookups.WithLabelValues("hit").Inc()
			return entry.Value, nil
		}
	}
	newsCacheLookups.WithLabelValues("miss").Inc()

	// Joined callers share the refresh, so it must outlive any one of them.
	refreshCtx := context.WithoutCancel(ctx)
	value, err, _ := s.refresh.Do("news", func() (interface{}, error) {
		return s.fetch(refreshCtx, query)
	})
	if err != nil {
		return dto.NewsResponse{}, err
	}
	return value.(dto.NewsResponse), nil
}

func (s *newsService) fetch(ctx context.Context, query dto.NewsQuery) (dto.NewsResponse, error) {
	now := s.now().UTC()
	articles, err := s.collector.Collect(ctx, news.Query{Days: query.Days, Limit: query.Limit, Now: now})
	if err != nil {
		return dto.NewsResponse{}, err
	}
	if articles == nil {
		articles = []news.Article{}
	}

	response := dto.NewsResponse{
		Articles:    articles,
		TotalCount:  len(articles),
		LastUpdated: now,
	}
	if err := s.slot.Store(ctx, cache.Entry[dto.NewsResponse]{Value: response, FetchedAt: now, TTL: s.ttl}); err != nil {
		s.logger.Warn().Err(err).Msg("news cache write failed")
	}

	s.logger.Info().Int("articles", len(articles)).Msg("news refreshed")
	return response, nil
}
