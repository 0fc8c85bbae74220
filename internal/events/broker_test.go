// Path: internal/events/broker_test.go
package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(TopicFavoritesChanged)
	defer cancel()

	b.Publish(TopicFavoritesChanged, 25)
	b.Publish(TopicCatalogRefreshed, 1000)

	select {
	case ev := <-ch:
		assert.Equal(t, TopicFavoritesChanged, ev.Topic)
		assert.Equal(t, 25, ev.Data)
	default:
		t.Fatal("expected an event")
	}

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	_, cancel := b.Subscribe(TopicThemeChanged)
	defer cancel()

	for i := 0; i < 100; i++ {
		b.Publish(TopicThemeChanged, i%2 == 0)
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(TopicFavoritesChanged)
	require.Equal(t, 1, b.Subscribers(TopicFavoritesChanged))

	cancel()
	cancel()
	assert.Equal(t, 0, b.Subscribers(TopicFavoritesChanged))

	_, open := <-ch
	assert.False(t, open, "channel is closed after cancel")

	b.Publish(TopicFavoritesChanged, nil)
}

func TestBroker_NilPublish(t *testing.T) {
	var b *Broker
	assert.NotPanics(t, func() { b.Publish(TopicFavoritesChanged, nil) })
}
