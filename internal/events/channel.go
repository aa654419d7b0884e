package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rapidcart/catalog/internal/models"
	"github.com/rapidcart/catalog/pkg/logger"
	"github.com/rapidcart/catalog/pkg/metrics"
)

// Channel is the fire-and-forget notification channel. Publish failures are
// logged and swallowed; they must never fail the surrounding request. Each
// attempt is additionally recorded in the event log, also best-effort.
type Channel struct {
	publisher Publisher
	db        *gorm.DB
	log       *zap.Logger
}

// NewChannel builds a Channel. A nil publisher downgrades to NoopPublisher;
// a nil db disables the event log.
func NewChannel(publisher Publisher, db *gorm.DB) *Channel {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Channel{
		publisher: publisher,
		db:        db,
		log:       logger.WithModule("events"),
	}
}

// Publish serialises the payload and sends it on the topic.
func (c *Channel) Publish(ctx context.Context, topic string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Warn("event payload marshal failed", zap.String("topic", topic), zap.Error(err))
		metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		return
	}

	pubErr := c.publisher.Publish(ctx, topic, body)
	if pubErr != nil {
		c.log.Warn("event publish failed", zap.String("topic", topic), zap.Error(pubErr))
		metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
	} else {
		metrics.EventsPublished.WithLabelValues(topic, "ok").Inc()
	}

	c.record(ctx, topic, body, pubErr == nil)
}

func (c *Channel) record(ctx context.Context, topic string, body []byte, published bool) {
	if c.db == nil {
		return
	}

	entry := models.EventLog{
		ID:        uuid.NewString(),
		Topic:     topic,
		Payload:   body,
		Published: published,
	}
	if err := c.db.WithContext(ctx).Create(&entry).Error; err != nil {
		c.log.Warn("event log write failed", zap.String("topic", topic), zap.Error(err))
	}
}
