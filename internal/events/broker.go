package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecoach-api/internal/observability"
)

const defaultBrokerBuffer = 16

// Broker fans review events out to in-process subscribers keyed by user.
// Slow subscribers drop events rather than block publishers.
type Broker struct {
	mu          sync.RWMutex
	buffer      int
	subscribers map[uint]map[chan SubmissionReviewed]struct{}
}

// NewBroker returns a Broker whose subscriber channels hold buffer events.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultBrokerBuffer
	}
	return &Broker{
		buffer:      buffer,
		subscribers: make(map[uint]map[chan SubmissionReviewed]struct{}),
	}
}

// Subscribe registers a listener for userID. The returned func unregisters
// it and closes the channel.
func (b *Broker) Subscribe(userID uint) (<-chan SubmissionReviewed, func()) {
	ch := make(chan SubmissionReviewed, b.buffer)

	b.mu.Lock()
	if _, ok := b.subscribers[userID]; !ok {
		b.subscribers[userID] = make(map[chan SubmissionReviewed]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
	b.mu.Unlock()
	observability.FeedSubscribers().Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if subscribers, ok := b.subscribers[userID]; ok {
				delete(subscribers, ch)
				if len(subscribers) == 0 {
					delete(b.subscribers, userID)
				}
			}
			close(ch)
			observability.FeedSubscribers().Dec()
		})
	}
}

// SubmissionReviewed delivers event to the submitting user's subscribers.
func (b *Broker) SubmissionReviewed(_ context.Context, event SubmissionReviewed) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscriber is the subset of *nats.Conn used by Relay.
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Relay feeds events published on NATS, by any node, into broker. Cancel
// ctx to drain the subscription.
func Relay(ctx context.Context, conn Subscriber, broker *Broker, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "review_relay").Logger()

	sub, err := conn.Subscribe(SubjectSubmissionReviewed, func(msg *nats.Msg) {
		var event SubmissionReviewed
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn().Err(err).Msg("invalid review event payload")
			return
		}
		_ = broker.SubmissionReviewed(ctx, event)
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if sub == nil {
			return
		}
		if err := sub.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain review subscription")
		}
	}()

	return nil
}
