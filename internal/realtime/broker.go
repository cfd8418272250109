package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Broker carries change notifications. A notification says "this view changed", never what
// changed: subscribers always refetch the full snapshot.
type Broker interface {
	Publish(ctx context.Context, topic string) error
	Listen(ctx context.Context, topic string) (Listener, error)
}

// Listener receives notifications for a single topic.
type Listener interface {
	// Next blocks until the next notification. It returns an error once the listener is
	// closed or the underlying connection fails.
	Next(ctx context.Context) error
	Close() error
}

var ErrListenerClosed = errors.New("listener closed")

const changePayload = "changed"

type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string) error {
	return b.client.Publish(ctx, topic, changePayload).Err()
}

// Listen returns once redis has confirmed the subscription, so a publish issued after
// Listen returns is never missed.
func (b *RedisBroker) Listen(ctx context.Context, topic string) (Listener, error) {
	pubsub := b.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	return &redisListener{pubsub: pubsub}, nil
}

type redisListener struct {
	pubsub *redis.PubSub

	mu     sync.Mutex
	closed bool
}

func (l *redisListener) Next(ctx context.Context) error {
	for {
		msg, err := l.pubsub.Receive(ctx)
		if err != nil {
			if l.isClosed() {
				return ErrListenerClosed
			}
			return err
		}
		switch msg.(type) {
		case *redis.Message:
			return nil
		default:
			// subscription confirmations and pongs
		}
	}
}

func (l *redisListener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()
	return l.pubsub.Close()
}

func (l *redisListener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
