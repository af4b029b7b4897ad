package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned when the submission queue has no capacity left.
var ErrQueueFull = errors.New("worker queue full")

// Task is a unit of background work, typically one pipeline run.
type Task interface {
	ID() string
	Execute(ctx context.Context) error
}

// TaskFunc adapts a bare function to the Task interface.
type TaskFunc struct {
	TaskID string
	Fn     func(ctx context.Context) error
}

func (t TaskFunc) ID() string                        { return t.TaskID }
func (t TaskFunc) Execute(ctx context.Context) error { return t.Fn(ctx) }

// Pool runs submitted tasks on a fixed number of goroutines. Submissions are
// non-blocking; when the queue is full the caller gets ErrQueueFull instead
// of stalling the request path.
type Pool struct {
	queue   chan Task
	workers int
	log     *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(workers, queueSize int, log *logrus.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:   make(chan Task, queueSize),
		workers: workers,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	p.log.WithField("workers", p.workers).Info("worker pool starting")
	for i := 1; i <= p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	log := p.log.WithField("worker", id)
	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			log.WithField("task_id", task.ID()).Info("task started")
			if err := task.Execute(p.ctx); err != nil {
				log.WithField("task_id", task.ID()).WithError(err).Error("task failed")
			} else {
				log.WithField("task_id", task.ID()).Info("task finished")
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Submit enqueues a task without blocking.
func (p *Pool) Submit(task Task) error {
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop cancels in-flight tasks and waits for the workers to exit.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}
