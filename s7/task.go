package s7

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plctalk/go-s7/logger"
)

// TaskFunc represents a function that performs a task within a goroutine managed
// by the TaskManager. It should return true to continue running the task, or
// false to stop the goroutine.
type TaskFunc func() bool

// TaskManager manages the lifecycle of goroutines (tasks) owned by one client.
// It provides a structured way to start, stop, and wait for goroutines, ensuring
// proper cancellation and resource cleanup.
//
// The TaskManager uses a context.Context to manage the lifecycle of the
// goroutines. When the context is canceled, all running goroutines are signaled
// to stop. A sync.WaitGroup lets Wait() block until every goroutine terminated.
type TaskManager struct {
	pctx    context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  logger.Logger
	count   atomic.Int32
	tickers sync.Map     // map[string]*intervalTask
	mu      sync.RWMutex // protect ctx and cancel
}

// intervalTask couples a ticker with the stop channel that unparks its
// goroutine. Stopping a ticker alone would leave the goroutine blocked on a
// channel that never fires again.
type intervalTask struct {
	ticker *time.Ticker
	stop   chan struct{}
}

// NewTaskManager creates a new TaskManager with the given context as the parent
// context and logger.
func NewTaskManager(ctx context.Context, l logger.Logger) *TaskManager {
	mgr := &TaskManager{pctx: ctx, logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)
	return mgr
}

// getContext safely returns the current context.
func (mgr *TaskManager) getContext() context.Context {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	return mgr.ctx
}

// Start starts a new goroutine with the given name and task function.
//
// The taskFunc should return true to continue running, or false to stop the
// goroutine.
func (mgr *TaskManager) Start(name string, taskFunc TaskFunc) error {
	ctx := mgr.getContext()
	select {
	case <-ctx.Done():
		return fmt.Errorf("task manager already stopped")
	default:
	}

	mgr.logger.Debug("start task", "name", name)
	mgr.startTask(name, func() {
		mgr.runTaskLoop(taskFunc)
	})

	return nil
}

// StartInterval starts a new goroutine that executes the given task function at
// the specified interval.
//
// Starting an interval task under a name that is already running first stops the
// previous ticker, so rearming a recurring task is idempotent and can never leave
// an orphaned timer firing against a stale handle.
//
// If runNow is true, the task function is executed once before the interval
// starts.
func (mgr *TaskManager) StartInterval(name string, taskFunc TaskFunc, interval time.Duration, runNow bool) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval: %v", interval)
	}

	ctx := mgr.getContext()
	select {
	case <-ctx.Done():
		return fmt.Errorf("task manager already stopped")
	default:
	}

	mgr.logger.Debug("start interval task", "name", name, "interval", interval, "runNow", runNow)

	// clear any previous interval task under the same name
	_ = mgr.StopInterval(name)

	task := &intervalTask{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}
	mgr.tickers.Store(name, task)

	cleanup := func() {
		task.ticker.Stop()
		// a rearm under the same name may have replaced the entry already
		mgr.tickers.CompareAndDelete(name, task)
	}

	if runNow {
		if !mgr.callWithRecover(name, taskFunc) {
			cleanup()
			return nil
		}
	}

	mgr.startTask(name, func() {
		defer cleanup()

		for {
			taskCtx := mgr.getContext()
			select {
			case <-taskCtx.Done():
				return
			case <-task.stop:
				return
			case <-task.ticker.C:
				if !mgr.callWithRecover(name, taskFunc) {
					return
				}
			}
		}
	})

	return nil
}

// StopInterval stops the interval task with the given name and releases its
// goroutine.
//
// It returns an error if no interval task with that name is running.
func (mgr *TaskManager) StopInterval(name string) error {
	if val, ok := mgr.tickers.LoadAndDelete(name); ok {
		if task, ok := val.(*intervalTask); ok {
			task.ticker.Stop()
			close(task.stop)
			return nil
		}
	}

	return fmt.Errorf("ticker %s not found", name)
}

// Stop signals all running goroutines and stops all tickers.
func (mgr *TaskManager) Stop() {
	mgr.tickers.Range(func(key, value any) bool {
		if task, ok := value.(*intervalTask); ok {
			task.ticker.Stop()
		}

		return true
	})

	mgr.mu.Lock()
	if mgr.cancel != nil {
		mgr.cancel()
	}
	mgr.mu.Unlock()
}

// Wait waits for all goroutines to terminate, then recreates the internal
// context so the manager can be reused for the next connection cycle.
func (mgr *TaskManager) Wait() {
	mgr.wg.Wait()

	mgr.mu.Lock()
	mgr.ctx, mgr.cancel = context.WithCancel(mgr.pctx)
	mgr.mu.Unlock()
}

// TaskCount returns the number of currently running goroutines.
func (mgr *TaskManager) TaskCount() int {
	return int(mgr.count.Load())
}

// startTask runs the common startup sequence for all tasks.
func (mgr *TaskManager) startTask(name string, taskBody func()) {
	mgr.wg.Add(1)
	mgr.count.Add(1)

	go func() {
		defer func() {
			mgr.count.Add(-1)
			mgr.wg.Done()
			mgr.logger.Debug(fmt.Sprintf("%s task terminated", name), "task_count", mgr.TaskCount())
		}()

		taskBody()
	}()
}

// callWithRecover calls a task function with panic protection.
func (mgr *TaskManager) callWithRecover(name string, fn func() bool) bool {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("panic in task", "name", name, "panic", r)
		}
	}()

	return fn()
}

// runTaskLoop runs a task function in a loop with context cancellation.
func (mgr *TaskManager) runTaskLoop(taskFunc TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("panic in task loop", "panic", r)
		}
	}()

	for {
		ctx := mgr.getContext()
		select {
		case <-ctx.Done():
			return
		default:
			if !taskFunc() {
				return
			}
		}
	}
}
