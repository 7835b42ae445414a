// Package cleanup schedules delayed message deletions and keeps the
// in-flight work observable until it completes.
package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/google/uuid"

	"forward_bot/internal/logger"
)

// Deleter is the single platform call the tracker needs.
type Deleter interface {
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// Task is one pending delete-after-delay operation.
type Task struct {
	ID        string
	ChatID    int64
	MessageID int
	FireAt    time.Time
}

// Tracker owns all scheduled deletions. Handlers register tasks
// concurrently; entries are pruned when the delete fires. There is no
// per-task cancellation; Close stops everything at shutdown.
type Tracker struct {
	client Deleter

	mu    sync.Mutex
	tasks map[string]Task

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTracker creates an empty registry bound to the given client.
func NewTracker(client Deleter) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		client: client,
		tasks:  make(map[string]Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ScheduleDelete registers a background task that waits for delay and
// then deletes the message. Nothing is reported back to the caller;
// a failed delete (message already gone) is logged and dropped.
func (t *Tracker) ScheduleDelete(chatID int64, messageID int, delay time.Duration) {
	task := Task{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		MessageID: messageID,
		FireAt:    time.Now().Add(delay),
	}

	t.mu.Lock()
	t.tasks[task.ID] = task
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run(task, delay)

	logger.L().Debugf("Scheduled delete: chat_id=%d message_id=%d delay=%s", chatID, messageID, delay)
}

func (t *Tracker) run(task Task, delay time.Duration) {
	defer t.wg.Done()
	defer t.remove(task.ID)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-t.ctx.Done():
		return
	case <-timer.C:
	}

	if _, err := t.client.DeleteMessage(t.ctx, &bot.DeleteMessageParams{
		ChatID:    task.ChatID,
		MessageID: task.MessageID,
	}); err != nil {
		logger.L().Warnf("Scheduled delete failed: chat_id=%d message_id=%d err=%v",
			task.ChatID, task.MessageID, err)
	}
}

func (t *Tracker) remove(id string) {
	t.mu.Lock()
	delete(t.tasks, id)
	t.mu.Unlock()
}

// Pending returns a snapshot of the tasks still waiting to fire.
func (t *Tracker) Pending() []Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make([]Task, 0, len(t.tasks))
	for _, task := range t.tasks {
		snapshot = append(snapshot, task)
	}
	return snapshot
}

// Close cancels all pending tasks and waits for their goroutines to
// exit. Pending messages are left undeleted.
func (t *Tracker) Close() {
	t.cancel()
	t.wg.Wait()
	logger.L().Info("Cleanup tracker stopped")
}
