package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()

	employeeCh, closeEmployee := hub.Subscribe("E1")
	defer closeEmployee()
	allCh, closeAll := hub.Subscribe(TopicAll)
	defer closeAll()
	otherCh, closeOther := hub.Subscribe("E2")
	defer closeOther()

	hub.Broadcast("E1", Event{Event: "record.recalculated", Data: "payload"})

	require.Len(t, employeeCh, 1)
	got := <-employeeCh
	assert.Equal(t, "E1", got.Topic)
	assert.Equal(t, "payload", got.Data)

	require.Len(t, allCh, 1)
	assert.Equal(t, TopicAll, (<-allCh).Topic)

	assert.Len(t, otherCh, 0)
	assert.Equal(t, 3, hub.TotalSubscribers())
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("E1")

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish("E1", Event{Event: "tick"})
	}
	assert.Len(t, ch, subscriberBuffer)

	assert.Equal(t, int64(5), hub.Dropped())

	cleanup()
	cleanup()
	assert.Equal(t, 0, hub.SubscriberCount("E1"))
	drained := 0
	for range ch {
		drained++
	}
	assert.Equal(t, subscriberBuffer, drained)
}
