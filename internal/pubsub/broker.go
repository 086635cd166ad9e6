package pubsub

import (
	"log"
	"sync"
)

const (
	TopicReservations = "reservations"
	TopicBlockedSlots = "blocked_slots"
)

// Change is the payload published after a committed write.
type Change struct {
	Topic  string `json:"topic"`
	Action string `json:"action"` // created, cancelled, deleted, updated
	ID     string `json:"id"`
	Date   string `json:"date"`
	Hour   int    `json:"hour"`
}

type Handler func(payload any)

// Broker is an in-process fan-out. Publish never waits for handlers and
// makes no delivery or ordering guarantee across subscribers.
type Broker struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string]map[uint64]Handler
	wg       sync.WaitGroup
}

func NewBroker() *Broker {
	return &Broker{handlers: make(map[string]map[uint64]Handler)}
}

// Subscribe registers h for topic and returns a func that removes it.
func (b *Broker) Subscribe(topic string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[uint64]Handler)
	}
	b.handlers[topic][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[topic], id)
			if len(b.handlers[topic]) == 0 {
				delete(b.handlers, topic)
			}
		})
	}
}

func (b *Broker) Publish(topic string, payload any) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[topic]))
	for _, h := range b.handlers[topic] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[pubsub] handler panic on topic %s: %v", topic, r)
				}
			}()
			h(payload)
		}(h)
	}
}

// Wait blocks until every handler started so far has returned.
func (b *Broker) Wait() {
	b.wg.Wait()
}
