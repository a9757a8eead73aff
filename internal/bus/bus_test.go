package bus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := NewBus()

	events := b.Subscribe("sub-1")
	b.Publish(Event{Order: "order-1", State: "SETTLED"})

	event := <-events
	require.Equal(t, "order-1", event.Order)
	require.Equal(t, "SETTLED", event.State)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus()

	events := b.Subscribe("sub-1")
	b.Unsubscribe("sub-1")

	_, open := <-events
	require.False(t, open)

	// публикация после отписки никого не трогает
	b.Publish(Event{Order: "order-1"})
}

func TestBusSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBus()

	b.Subscribe("slow")
	// переполняем буфер: Publish не должен зависнуть
	for i := 0; i < subscriberBuffer*2; i++ {
		b.Publish(Event{Order: "order-1"})
	}
}

func TestBusFanOut(t *testing.T) {
	b := NewBus()

	first := b.Subscribe("sub-1")
	second := b.Subscribe("sub-2")

	b.Publish(Event{Order: "order-1"})

	require.Equal(t, "order-1", (<-first).Order)
	require.Equal(t, "order-1", (<-second).Order)
}
