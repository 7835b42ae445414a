package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []*bot.DeleteMessageParams
	err     error
}

func (f *fakeDeleter) DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, params)
	return f.err == nil, f.err
}

func (f *fakeDeleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestScheduleDeleteFiresAndPrunes(t *testing.T) {
	deleter := &fakeDeleter{}
	tracker := NewTracker(deleter)
	defer tracker.Close()

	tracker.ScheduleDelete(-100500, 42, 10*time.Millisecond)
	require.Len(t, tracker.Pending(), 1)

	waitFor(t, func() bool { return deleter.count() == 1 })
	waitFor(t, func() bool { return len(tracker.Pending()) == 0 })

	deleter.mu.Lock()
	defer deleter.mu.Unlock()
	assert.Equal(t, 42, deleter.deleted[0].MessageID)
	assert.Equal(t, int64(-100500), deleter.deleted[0].ChatID)
}

func TestScheduleDeleteConcurrentRegistration(t *testing.T) {
	deleter := &fakeDeleter{}
	tracker := NewTracker(deleter)
	defer tracker.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			tracker.ScheduleDelete(-100500, id, 10*time.Millisecond)
		}(i)
	}
	wg.Wait()

	waitFor(t, func() bool { return deleter.count() == 50 })
	waitFor(t, func() bool { return len(tracker.Pending()) == 0 })
}

func TestScheduleDeleteFailureIsSwallowed(t *testing.T) {
	deleter := &fakeDeleter{err: errors.New("message to delete not found")}
	tracker := NewTracker(deleter)
	defer tracker.Close()

	tracker.ScheduleDelete(-100500, 42, time.Millisecond)

	waitFor(t, func() bool { return deleter.count() == 1 })
	waitFor(t, func() bool { return len(tracker.Pending()) == 0 })
}

func TestCloseCancelsPendingTasks(t *testing.T) {
	deleter := &fakeDeleter{}
	tracker := NewTracker(deleter)

	tracker.ScheduleDelete(-100500, 42, time.Hour)
	require.Len(t, tracker.Pending(), 1)

	tracker.Close()

	assert.Zero(t, deleter.count())
	assert.Empty(t, tracker.Pending())
}
