package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rapidcart/catalog/internal/cache"
	"github.com/rapidcart/catalog/internal/events"
	"github.com/rapidcart/catalog/internal/models"
	"github.com/rapidcart/catalog/internal/pipeline"
	apperrors "github.com/rapidcart/catalog/pkg/errors"
	"github.com/rapidcart/catalog/pkg/logger"
	"github.com/rapidcart/catalog/pkg/metrics"
)

// Cache keys used by the read paths. The collection key mirrors the full
// list result; item keys mirror individual rows.
const (
	collectionCacheKey = "records:all"
	itemCacheKeyPrefix = "record:"
)

// Source tags reported to clients on read responses.
const (
	SourceCache    = "cache"
	SourceDatabase = "database"
)

// CreateRecordInput carries the fields a client may submit for a record.
type CreateRecordInput struct {
	Name        string
	Description string
	Price       float64
}

// UpdateRecordInput mirrors CreateRecordInput for full-row updates.
type UpdateRecordInput = CreateRecordInput

// RecordService orchestrates the catalog flow: reads go cache-first with the
// database as the source of truth; writes run the ingestion pipeline, persist,
// invalidate affected cache keys and notify subscribers. Cache failures are
// absorbed here and degrade every operation to database-only behaviour.
type RecordService struct {
	db       *gorm.DB
	cache    cache.Store
	pipeline *pipeline.Pipeline
	channel  *events.Channel
	ttl      time.Duration
	topic    string
	log      *zap.Logger
}

// RecordServiceOption customises the service.
type RecordServiceOption func(*RecordService)

// WithCacheTTL overrides the TTL applied to cache writes.
func WithCacheTTL(ttl time.Duration) RecordServiceOption {
	return func(s *RecordService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithEventTopic overrides the topic record creation events are published on.
func WithEventTopic(topic string) RecordServiceOption {
	return func(s *RecordService) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// NewRecordService constructs a RecordService. The cache store and channel
// may be nil, which disables caching and notifications respectively.
func NewRecordService(db *gorm.DB, store cache.Store, pl *pipeline.Pipeline, channel *events.Channel, opts ...RecordServiceOption) (*RecordService, error) {
	if db == nil {
		return nil, errors.New("record service: db is required")
	}
	if pl == nil {
		pl = pipeline.New()
	}

	svc := &RecordService{
		db:       db,
		cache:    store,
		pipeline: pl,
		channel:  channel,
		ttl:      cache.DefaultTTL,
		topic:    "record:created",
		log:      logger.WithModule("records"),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// List returns every record ordered newest first, together with the layer
// that served it.
func (s *RecordService) List(ctx context.Context) ([]models.Record, string, error) {
	if cached, ok := s.cacheGet(ctx, collectionCacheKey); ok {
		var records []models.Record
		if err := json.Unmarshal(cached, &records); err == nil {
			return records, SourceCache, nil
		}
		// Unparseable cache content falls through to the store.
		s.invalidate(ctx, collectionCacheKey)
	}

	records := make([]models.Record, 0)
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, "", apperrors.ErrDependencyUnavailable.WithInternal(fmt.Errorf("list records: %w", err))
	}

	s.cachePut(ctx, collectionCacheKey, records)
	return records, SourceDatabase, nil
}

// Get returns a single record by id, cache-first.
func (s *RecordService) Get(ctx context.Context, id int64) (*models.Record, string, error) {
	key := itemCacheKey(id)

	if cached, ok := s.cacheGet(ctx, key); ok {
		var record models.Record
		if err := json.Unmarshal(cached, &record); err == nil {
			return &record, SourceCache, nil
		}
		s.invalidate(ctx, key)
	}

	var record models.Record
	err := s.db.WithContext(ctx).Take(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.ErrNotFound
	}
	if err != nil {
		return nil, "", apperrors.ErrDependencyUnavailable.WithInternal(fmt.Errorf("get record %d: %w", id, err))
	}

	s.cachePut(ctx, key, record)
	return &record, SourceDatabase, nil
}

// Create runs the ingestion pipeline and persists the result. The pipeline
// must complete before the store is touched; its failure aborts persistence.
// On success the collection cache is invalidated and a creation event is
// published best-effort.
func (s *RecordService) Create(ctx context.Context, input CreateRecordInput) (*models.Record, error) {
	draft := pipeline.Draft{
		Name:        input.Name,
		Description: input.Description,
		Price:       roundCents(input.Price),
	}

	draft, err := s.pipeline.Run(ctx, draft)
	if err != nil {
		return nil, err
	}

	record := models.Record{
		Name:        draft.Name,
		Description: draft.Description,
		Price:       roundCents(draft.Price),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, apperrors.ErrDependencyUnavailable.WithInternal(fmt.Errorf("create record: %w", err))
	}

	// The new row has no per-item cache entry yet; only the list is stale.
	s.invalidate(ctx, collectionCacheKey)

	if s.channel != nil {
		s.channel.Publish(ctx, s.topic, record)
	}

	return &record, nil
}

// Update replaces the mutable fields of an existing record. Both the
// collection key and the record's own key are invalidated so no stale value
// outlives the write.
func (s *RecordService) Update(ctx context.Context, id int64, input UpdateRecordInput) (*models.Record, error) {
	var record models.Record
	err := s.db.WithContext(ctx).Take(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.ErrDependencyUnavailable.WithInternal(fmt.Errorf("load record %d: %w", id, err))
	}

	record.Name = input.Name
	record.Description = input.Description
	record.Price = roundCents(input.Price)

	if err := s.db.WithContext(ctx).Model(&record).Updates(map[string]interface{}{
		"name":        record.Name,
		"description": record.Description,
		"price":       record.Price,
	}).Error; err != nil {
		return nil, apperrors.ErrDependencyUnavailable.WithInternal(fmt.Errorf("update record %d: %w", id, err))
	}

	s.invalidate(ctx, collectionCacheKey, itemCacheKey(id))

	return &record, nil
}

// cacheGet absorbs every cache failure into a miss so the store stays
// authoritative and reachable.
func (s *RecordService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}

	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		s.log.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, false
	}

	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return value, true
}

func (s *RecordService) cachePut(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	body, err := json.Marshal(value)
	if err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		s.log.Debug("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		s.log.Debug("cache set failed", zap.String("key", key), zap.Error(err))
		return
	}
	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
}

func (s *RecordService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		metrics.CacheOperations.WithLabelValues("delete", "error").Inc()
		s.log.Debug("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
		return
	}
	metrics.CacheOperations.WithLabelValues("delete", "ok").Inc()
}

func itemCacheKey(id int64) string {
	return fmt.Sprintf("%s%d", itemCacheKeyPrefix, id)
}

// roundCents normalises a price to two-decimal cent precision.
func roundCents(price float64) float64 {
	return math.Round(price*100) / 100
}
