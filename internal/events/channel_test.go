package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rapidcart/catalog/internal/database/testutil"
	"github.com/rapidcart/catalog/internal/models"
)

type capturingPublisher struct {
	topic   string
	payload []byte
	err     error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.topic = topic
	p.payload = payload
	return p.err
}

func TestChannelPublishesAndRecords(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	pub := &capturingPublisher{}
	channel := NewChannel(pub, db)

	channel.Publish(context.Background(), "record:created", map[string]interface{}{"id": 1})

	require.Equal(t, "record:created", pub.topic)
	require.JSONEq(t, `{"id":1}`, string(pub.payload))

	var entries []models.EventLog
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, "record:created", entries[0].Topic)
	require.True(t, entries[0].Published)
	require.NotEmpty(t, entries[0].ID)
}

func TestChannelSwallowsPublishFailures(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	pub := &capturingPublisher{err: errors.New("connection refused")}
	channel := NewChannel(pub, db)

	// Must not panic or surface the error.
	channel.Publish(context.Background(), "record:created", map[string]interface{}{"id": 2})

	var entry models.EventLog
	require.NoError(t, db.First(&entry).Error)
	require.False(t, entry.Published)
}

func TestChannelWithNilPublisherAndDB(t *testing.T) {
	channel := NewChannel(nil, nil)
	channel.Publish(context.Background(), "record:created", "payload")
}
