package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"grailify/internal/chart"
	"grailify/internal/domain"
	"grailify/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultItemCacheTTL = 60 * time.Second

var ErrInvalidItemID = errors.New("item id must be a positive integer")

type CatalogProvider interface {
	FetchItem(ctx context.Context, id int) (*domain.ItemDetail, error)
	FetchTrending(ctx context.Context) (*domain.TrendingResponse, error)
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
	Browse(ctx context.Context, category string, page int) (*domain.BrowsePage, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	SellPage(ctx context.Context) ([]domain.SellPageCategory, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// ItemService serves item detail and chart views, caching catalog
// responses in Redis when a client is configured.
type ItemService struct {
	tracer   trace.Tracer
	provider CatalogProvider
	redis    RedisClient
	metrics  *observability.Metrics
	cacheTTL time.Duration
	surface  chart.Surface
	now      func() time.Time
}

func NewItemService(
	tracer trace.Tracer,
	provider CatalogProvider,
	redisClient RedisClient,
	metrics *observability.Metrics,
	cacheTTL time.Duration,
	surface chart.Surface,
) *ItemService {
	if cacheTTL <= 0 {
		cacheTTL = defaultItemCacheTTL
	}
	if surface.Width <= 0 || surface.Height <= 0 {
		surface = chart.DefaultSurface
	}
	return &ItemService{
		tracer:   tracer,
		provider: provider,
		redis:    redisClient,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		surface:  surface,
		now:      time.Now,
	}
}

func (s *ItemService) Surface() chart.Surface {
	return s.surface
}

// GetItem returns the cached item detail, falling back to the catalog.
func (s *ItemService) GetItem(ctx context.Context, id int) (*domain.ItemDetail, error) {
	ctx, span := s.tracer.Start(ctx, "item-service.get-item")
	defer span.End()
	span.SetAttributes(attribute.Int("item_id", id))

	if id <= 0 {
		return nil, ErrInvalidItemID
	}

	if s.redis != nil {
		cached, err := s.getItemCache(ctx, id)
		if err != nil {
			log.Printf("redis cache read error for item %d: %v", id, err)
		}
		if cached != nil {
			s.metrics.CacheLookup(true)
			return cached, nil
		}
		s.metrics.CacheLookup(false)
	}

	detail, err := s.provider.FetchItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.setItemCache(ctx, id, detail); err != nil {
			log.Printf("redis cache write error for item %d: %v", id, err)
		}
	}
	return detail, nil
}

// RefreshItem reloads an item from the catalog and overwrites the cache.
func (s *ItemService) RefreshItem(ctx context.Context, id int) error {
	ctx, span := s.tracer.Start(ctx, "item-service.refresh-item")
	defer span.End()
	span.SetAttributes(attribute.Int("item_id", id))

	detail, err := s.provider.FetchItem(ctx, id)
	if err != nil {
		return err
	}
	if s.redis == nil {
		return nil
	}
	if err := s.setItemCache(ctx, id, detail); err != nil {
		return fmt.Errorf("cache item %d: %w", id, err)
	}
	return nil
}

// PriceChart builds the chart view of an item for one timeframe.
func (s *ItemService) PriceChart(ctx context.Context, id int, tf domain.Timeframe) (*ItemView, error) {
	ctx, span := s.tracer.Start(ctx, "item-service.price-chart")
	defer span.End()
	span.SetAttributes(attribute.Int("item_id", id), attribute.String("timeframe", string(tf)))

	detail, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildItemView(detail, tf, s.now(), s.surface), nil
}

func (s *ItemService) Trending(ctx context.Context) (*domain.TrendingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "item-service.trending")
	defer span.End()

	return s.provider.FetchTrending(ctx)
}

func (s *ItemService) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "item-service.search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	return s.provider.Search(ctx, query)
}

func itemCacheKey(id int) string {
	return "item:" + strconv.Itoa(id)
}

func (s *ItemService) setItemCache(ctx context.Context, id int, detail *domain.ItemDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, itemCacheKey(id), data, s.cacheTTL).Err()
}

func (s *ItemService) getItemCache(ctx context.Context, id int) (*domain.ItemDetail, error) {
	data, err := s.redis.Get(ctx, itemCacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var detail domain.ItemDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
