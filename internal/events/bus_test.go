package events

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus[any]()
	a := bus.Subscribe()
	b := bus.Subscribe()
	assert.Equal(t, 2, bus.Len())

	bus.Publish(ProductDeleted{ProductID: 42})

	assert.Equal(t, ProductDeleted{ProductID: 42}, <-a)
	assert.Equal(t, ProductDeleted{ProductID: 42}, <-b)

	bus.Unsubscribe(a)
	assert.Equal(t, 1, bus.Len())
	_, open := <-a
	assert.False(t, open)

	// unsubscribing twice must not panic on a closed channel
	bus.Unsubscribe(a)
}

func TestEventBusDropsWhenFull(t *testing.T) {
	bus := NewEventBus[any]()
	ch := bus.SubscribeBuffered(1)

	bus.Publish(ToastDismissed{})
	bus.Publish(ToastDismissed{})

	assert.Len(t, ch, 1)
	assert.Equal(t, uint64(1), bus.Dropped())
}

func TestNilBusPublish(t *testing.T) {
	var bus *EventBus[any]
	assert.NotPanics(t, func() { bus.Publish(ToastDismissed{}) })
}

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	err       error
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func TestForwarderRelaysProductEvents(t *testing.T) {
	bus := NewEventBus[any]()
	ch := &fakeChannel{}
	f := NewForwarder(ch, "catalog", bus, hclog.NewNullLogger())

	bus.Publish(ProductAdded{ProductID: 42, Name: "Widget"})
	bus.Publish(ToastShown{Message: "ignored", Kind: "success"})
	bus.Publish(ProductDeleted{ProductID: 42})

	// Close drains the subscriber before returning
	require.NoError(t, f.Close())

	ch.mu.Lock()
	defer ch.mu.Unlock()
	assert.Equal(t, []string{"product.added", "product.deleted"}, ch.keys)

	var added ProductAdded
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &added))
	assert.Equal(t, 42, added.ProductID)
	assert.Equal(t, "application/json", ch.published[0].ContentType)
}

func TestForwarderSurvivesPublishErrors(t *testing.T) {
	bus := NewEventBus[any]()
	ch := &fakeChannel{err: errors.New("channel closed")}
	f := NewForwarder(ch, "catalog", bus, hclog.NewNullLogger())

	bus.Publish(ProductUpdated{ProductID: 1})
	require.NoError(t, f.Close())
	assert.Equal(t, 0, bus.Len())
}

func TestRoutingKey(t *testing.T) {
	_, ok := RoutingKey(ModeChanged{})
	assert.False(t, ok)

	key, ok := RoutingKey(ProductUpdated{})
	assert.True(t, ok)
	assert.Equal(t, "product.updated", key)
}
