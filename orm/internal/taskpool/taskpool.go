package taskpool

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("taskpool: 任务池已经关闭")

type Task func()

// Worker 利用 channel 实现的任务池, 只有一个 goroutine, 任务按照提交的顺序执行
type Worker struct {
	tasks chan Task
	close chan struct{}
	done  chan struct{}

	// 保护 closed, 提交的时候持有读锁, 避免往关闭之后的池子里面提交任务
	lock   sync.RWMutex
	closed bool
	once   sync.Once
}

func NewWorker(capacity int) *Worker {
	w := &Worker{
		tasks: make(chan Task, capacity),
		close: make(chan struct{}),
		done:  make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case task := <-w.tasks:
			task()
		case <-w.close:
			// 收到关闭信号后, 执行完剩余的任务
			for {
				select {
				case task := <-w.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// Submit 提交任务, 队列满了会阻塞直到 ctx 过期
func (w *Worker) Submit(ctx context.Context, task Task) error {
	w.lock.RLock()
	defer w.lock.RUnlock()
	if w.closed {
		return ErrClosed
	}
	select {
	case w.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Close 等待已经提交的任务全部执行完, 可以重复调用.
// 不要在任务里面调用 Close
func (w *Worker) Close() error {
	w.once.Do(func() {
		w.lock.Lock()
		w.closed = true
		// close之后, 每一个等待的 goroutine 都会收到消息(相当于广播)
		close(w.close)
		w.lock.Unlock()
	})
	<-w.done
	return nil
}
