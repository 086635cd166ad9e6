package pubsub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker()

	var mu sync.Mutex
	got := map[string]int{}
	record := func(name string) Handler {
		return func(payload any) {
			mu.Lock()
			defer mu.Unlock()
			got[name]++
		}
	}

	b.Subscribe(TopicReservations, record("a"))
	b.Subscribe(TopicReservations, record("b"))
	b.Subscribe(TopicBlockedSlots, record("c"))

	b.Publish(TopicReservations, Change{Action: "created"})
	b.Wait()

	assert.Equal(t, map[string]int{"a": 1, "b": 1}, got)
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()

	var mu sync.Mutex
	calls := 0
	unsubscribe := b.Subscribe(TopicReservations, func(any) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	b.Publish(TopicReservations, nil)
	b.Wait()
	unsubscribe()
	unsubscribe()
	b.Publish(TopicReservations, nil)
	b.Wait()

	assert.Equal(t, 1, calls)
}

func TestBrokerHandlerPanicIsContained(t *testing.T) {
	b := NewBroker()

	done := make(chan struct{}, 1)
	b.Subscribe(TopicReservations, func(any) { panic("boom") })
	b.Subscribe(TopicReservations, func(any) { done <- struct{}{} })

	assert.NotPanics(t, func() {
		b.Publish(TopicReservations, nil)
		b.Wait()
	})
	assert.Len(t, done, 1)
}

func TestBrokerPublishWithoutSubscribers(t *testing.T) {
	b := NewBroker()
	assert.NotPanics(t, func() { b.Publish("nobody", nil) })
}
