package broadcast

import (
	"log/slog"
	"sync"
	"time"
)

// Topics published by the core.
const (
	// TopicPriceUpdate carries raw feed frames, forwarded verbatim.
	TopicPriceUpdate = "price-update"

	// TopicSettingsUpdated carries the full settings value after each
	// successful mutation, JSON-encoded.
	TopicSettingsUpdated = "settings-updated"
)

// Message is one published payload.
type Message struct {
	Topic       string
	Payload     []byte
	PublishedAt time.Time
}

// Broker fans messages out to per-topic subscribers.
type Broker struct {
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string][]*subscriber
}

type subscriber struct {
	ch chan Message
}

// New creates an empty Broker.
func New(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		logger: logger,
		subs:   make(map[string][]*subscriber),
	}
}

// Subscribe registers a listener for topic with the given channel buffer.
// The returned cancel func removes the subscription and closes the channel;
// it is safe to call more than once.
func (b *Broker) Subscribe(topic string, buf int) (<-chan Message, func()) {
	if buf < 1 {
		buf = 1
	}
	sub := &subscriber{ch: make(chan Message, buf)}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[topic]
			for i, s := range list {
				if s == sub {
					b.subs[topic] = append(list[:i], list[i+1:]...)
					break
				}
			}
			// Close under the lock so no Publish can be mid-send.
			close(sub.ch)
		})
	}

	return sub.ch, cancel
}

// Publish delivers payload to every subscriber of topic without blocking.
// Subscribers that cannot keep up lose the message.
func (b *Broker) Publish(topic string, payload []byte) {
	msg := Message{
		Topic:       topic,
		Payload:     payload,
		PublishedAt: time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[topic] {
		select {
		case sub.ch <- msg:
		default:
			b.logger.Warn("subscriber buffer full, dropping message", "topic", topic)
		}
	}
}

// SubscriberCount reports the number of listeners on topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
