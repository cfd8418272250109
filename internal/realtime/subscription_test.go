package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func newTestBroker(t *testing.T) *RedisBroker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBroker(client)
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for delivery")
	}
	var zero T
	return zero
}

func TestSubscription_DeliversInitialAndRefetchedSnapshots(t *testing.T) {
	broker := newTestBroker(t)
	ctx := context.Background()

	var version atomic.Int64
	snapshots := make(chan int64, 8)

	sub := Open(ctx, broker, "bookings:patient:p1", func(context.Context) (int64, error) {
		return version.Load(), nil
	}, Sink[int64]{
		OnSnapshot: func(v int64) { snapshots <- v },
		OnError:    func(err error) { t.Errorf("unexpected error: %v", err) },
	})
	defer sub.Close()

	assert.Equal(t, int64(0), recv(t, snapshots))

	version.Store(1)
	require.NoError(t, broker.Publish(ctx, "bookings:patient:p1"))
	assert.Equal(t, int64(1), recv(t, snapshots))

	version.Store(2)
	require.NoError(t, broker.Publish(ctx, "bookings:patient:p1"))
	assert.Equal(t, int64(2), recv(t, snapshots))
}

func TestSubscription_OnlyOwnTopicWakesIt(t *testing.T) {
	broker := newTestBroker(t)
	ctx := context.Background()

	patientSnapshots := make(chan string, 8)
	doctorSnapshots := make(chan string, 8)

	patient := Open(ctx, broker, PatientBookingsTopic(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
		func(context.Context) (string, error) { return "patient-view", nil },
		Sink[string]{OnSnapshot: func(s string) { patientSnapshots <- s }})
	defer patient.Close()

	doctor := Open(ctx, broker, DoctorBookingsTopic(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
		func(context.Context) (string, error) { return "doctor-view", nil },
		Sink[string]{OnSnapshot: func(s string) { doctorSnapshots <- s }})
	defer doctor.Close()

	assert.Equal(t, "patient-view", recv(t, patientSnapshots))
	assert.Equal(t, "doctor-view", recv(t, doctorSnapshots))

	require.NoError(t, broker.Publish(ctx, DoctorBookingsTopic(uuid.MustParse("22222222-2222-2222-2222-222222222222"))))
	assert.Equal(t, "doctor-view", recv(t, doctorSnapshots))

	select {
	case s := <-patientSnapshots:
		t.Fatalf("patient view woke up for a doctor change: %s", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscription_FetchErrorStopsWithoutRetry(t *testing.T) {
	broker := newTestBroker(t)
	ctx := context.Background()

	boom := errors.New("store unavailable")
	var calls atomic.Int32
	errs := make(chan error, 4)

	sub := Open(ctx, broker, DoctorsTopic, func(context.Context) ([]string, error) {
		calls.Add(1)
		return nil, boom
	}, Sink[[]string]{
		OnSnapshot: func([]string) { t.Error("no snapshot expected") },
		OnError:    func(err error) { errs <- err },
	})
	defer sub.Close()

	assert.ErrorIs(t, recv(t, errs), boom)
	recv(t, sub.Done())
	assert.ErrorIs(t, sub.Err(), boom)

	require.NoError(t, broker.Publish(ctx, DoctorsTopic))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, errs)
}

func TestSubscription_CloseIsSynchronousAndIdempotent(t *testing.T) {
	broker := newTestBroker(t)
	ctx := context.Background()

	var delivered atomic.Int32
	first := make(chan struct{}, 1)

	sub := Open(ctx, broker, DoctorsTopic, func(context.Context) (int, error) {
		return 0, nil
	}, Sink[int]{
		OnSnapshot: func(int) {
			if delivered.Add(1) == 1 {
				first <- struct{}{}
			}
		},
		OnError: func(err error) { t.Errorf("close must not surface an error: %v", err) },
	})

	recv(t, first)
	sub.Close()
	sub.Close()

	require.NoError(t, broker.Publish(ctx, DoctorsTopic))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), delivered.Load())
	assert.NoError(t, sub.Err())
}

func TestSubscription_ContextCancellationReleasesIt(t *testing.T) {
	broker := newTestBroker(t)
	ctx, cancel := context.WithCancel(context.Background())

	ready := make(chan struct{}, 1)
	sub := Open(ctx, broker, DoctorsTopic, func(context.Context) (int, error) {
		return 0, nil
	}, Sink[int]{OnSnapshot: func(int) { ready <- struct{}{} }})

	recv(t, ready)
	cancel()
	recv(t, sub.Done())
	assert.NoError(t, sub.Err())
}

func TestSubscription_ListenErrorGoesToErrorCallback(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	errs := make(chan error, 1)
	sub := Open(context.Background(), NewRedisBroker(client), DoctorsTopic, func(context.Context) (int, error) {
		return 0, nil
	}, Sink[int]{
		OnSnapshot: func(int) { t.Error("no snapshot expected") },
		OnError:    func(err error) { errs <- err },
	})
	defer sub.Close()

	assert.Error(t, recv(t, errs))
}
