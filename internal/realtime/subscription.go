package realtime

import (
	"context"
	"sync"
)

// Sink receives the output of one subscription. Callbacks run on the subscription's own
// goroutine, one at a time, and must not call Close on the same subscription.
type Sink[T any] struct {
	OnSnapshot func(T)
	OnError    func(error)
}

// FetchFunc reads the full current snapshot of a view.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Subscription is a scoped, long-lived view. It is released by Close or by cancelling the
// context it was opened with, whichever comes first.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Open listens on topic and delivers fetch's snapshot once immediately and again after
// every notification, in arrival order. The first listener or fetch error is handed to
// OnError and ends the subscription; there is no retry.
func Open[T any](ctx context.Context, broker Broker, topic string, fetch FetchFunc[T], sink Sink[T]) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx, func(ctx context.Context) error {
		return stream(ctx, broker, topic, fetch, sink)
	}, sink.OnError)
	return s
}

func (s *Subscription) run(ctx context.Context, loop func(context.Context) error, onError func(error)) {
	defer close(s.done)
	defer s.cancel()

	err := loop(ctx)
	if err == nil || ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	if onError != nil {
		onError(err)
	}
}

func stream[T any](ctx context.Context, broker Broker, topic string, fetch FetchFunc[T], sink Sink[T]) error {
	listener, err := broker.Listen(ctx, topic)
	if err != nil {
		return err
	}
	defer listener.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	for {
		snapshot, err := fetch(ctx)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		if sink.OnSnapshot != nil {
			sink.OnSnapshot(snapshot)
		}

		if err := listener.Next(ctx); err != nil {
			return err
		}
	}
}

// Close stops delivery and returns once no callback is running and none will run again.
// It is safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Done is closed when the subscription has stopped, either by Close, context cancellation
// or a terminal error.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the subscription, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
