package telegram

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"forward_bot/internal/logger"
)

// HandlerTask 路由命中的一次 handler 调用
type HandlerTask struct {
	Ctx         context.Context
	BotInstance *bot.Bot
	Update      *tgmodels.Update
	Route       string
	Handler     bot.HandlerFunc
}

// WorkerPool Handler 工作池
// 不同事件的 handler 并发执行，单个事件内部保持顺序。
type WorkerPool struct {
	taskQueue chan HandlerTask
	wg        sync.WaitGroup
	workers   int
}

// NewWorkerPool 创建工作池
// workers: worker 协程数量
// queueSize: 任务队列大小
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	pool := &WorkerPool{
		taskQueue: make(chan HandlerTask, queueSize),
		workers:   workers,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	logger.L().Infof("Worker pool started with %d workers, queue size %d", workers, queueSize)
	return pool
}

// worker 工作协程
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	logger.L().Debugf("Worker %d started", id)

	for task := range p.taskQueue {
		// 执行 handler，带 panic recovery
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.L().Errorf("Worker %d: handler panic recovered: route=%s err=%v", id, task.Route, r)
				}
			}()

			task.Handler(task.Ctx, task.BotInstance, task.Update)
		}()
	}

	logger.L().Debugf("Worker %d stopped", id)
}

// Submit 提交任务到工作池
// 队列满时丢弃任务并告警，不阻塞轮询循环。
func (p *WorkerPool) Submit(task HandlerTask) {
	select {
	case p.taskQueue <- task:
	default:
		logger.L().Warnf("Worker pool queue is full, task dropped: route=%s", task.Route)
	}
}

// Shutdown 优雅关闭工作池
// 等待所有正在执行的任务完成
func (p *WorkerPool) Shutdown() {
	logger.L().Info("Shutting down worker pool...")
	close(p.taskQueue)
	p.wg.Wait()
	logger.L().Info("Worker pool shut down successfully")
}
