package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisrepo "github.com/iho/greenledger/internal/adapter/repository/redis"
	"github.com/iho/greenledger/internal/usecase"
)

type recordingSettler struct {
	mu    sync.Mutex
	dates []time.Time
	err   error
}

func (s *recordingSettler) RunForDate(_ context.Context, date time.Time) (*usecase.SettlementReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dates = append(s.dates, date)
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.SettlementReport{RunDate: date}, nil
}

func TestRunOnceUsesConfiguredTimezone(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	settler := &recordingSettler{}
	r := NewRunner(Config{Settler: settler, Location: seoul, Logger: zerolog.Nop()})
	// 20:00 UTC on the 14th is already the 15th in Seoul.
	r.now = func() time.Time { return time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC) }

	report, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Len(t, settler.dates, 1)
	assert.Equal(t, 15, settler.dates[0].Day())
}

func TestRunOnceOnlyOneReplicaRuns(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	other := redisrepo.NewLock(client, "settlement")
	held, err := other.Acquire(context.Background(), time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	settler := &recordingSettler{}
	r := NewRunner(Config{
		Settler: settler,
		Locker:  redisrepo.NewLock(client, "settlement"),
		Logger:  zerolog.Nop(),
	})

	report, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Empty(t, settler.dates)

	require.NoError(t, other.Release(context.Background()))

	report, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Len(t, settler.dates, 1)

	// The lease is released after the pass.
	assert.False(t, mr.Exists("lock:settlement"))
}

func TestRunOncePropagatesSettlementError(t *testing.T) {
	settler := &recordingSettler{err: errors.New("list due directives: boom")}
	r := NewRunner(Config{Settler: settler, Logger: zerolog.Nop()})

	_, err := r.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStartStopsOnCancel(t *testing.T) {
	settler := &recordingSettler{}
	r := NewRunner(Config{Settler: settler, Interval: time.Hour, Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return len(settlerDates(settler)) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func settlerDates(s *recordingSettler) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.dates...)
}
