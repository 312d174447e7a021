package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/gammazero/deque"
)

/*
Queue keeps tasks as either pending or running. Pull moves a task from
pending to running; Drop moves it back and Complete removes it.

Every method takes a context.Context so implementations can honour
timeouts and cancellations.
*/
type Queue interface {
	// Push adds a pending task. Pushing a task whose ID is already on the
	// queue is an error.
	Push(context.Context, *Task) error
	// Pull returns a pending task, now running, together with a context
	// for working on it and the function releasing that context. With
	// no pending tasks it returns 4 nil values.
	Pull(context.Context) (*Task, context.Context, context.CancelFunc, error)
	// Drop returns the running task with the given ID to pending. It does
	// nothing for tasks that are not running.
	Drop(context.Context, string) error
	// Complete removes the running task with the given ID.
	Complete(context.Context, string) error
	// Count returns the number of pending and running tasks.
	Count(context.Context) (pending int, running int, err error)
	// Stop releases the queue's resources and cancels the contexts of
	// pulled tasks.
	Stop(context.Context) error
}

type memQueue struct {
	// sem holds a token while the queue is being read or modified.
	sem       chan struct{}
	pending   deque.Deque[*Task]
	ids       map[string]bool
	running   map[string]*Task
	ctx       context.Context
	ctxCancel context.CancelFunc
}

// New returns a queue backed only by the process memory.
// Tasks are pulled in the order they were pushed.
func New() Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &memQueue{
		sem:       make(chan struct{}, 1),
		ids:       make(map[string]bool),
		running:   make(map[string]*Task),
		ctx:       ctx,
		ctxCancel: cancel,
	}
}

/*
WaitFor polls the given queue every interval until it holds no pending
or running tasks. It returns the context's error if it is done first and
any error returned by Count.
*/
func WaitFor(ctx context.Context, q Queue, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		pending, running, err := q.Count(ctx)
		if err != nil {
			return err
		}
		if pending+running == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (mq *memQueue) Push(ctx context.Context, t *Task) error {
	if err := mq.acquire(ctx); err != nil {
		return err
	}
	defer mq.release()
	if mq.ids[t.ID()] {
		return fmt.Errorf("pushing task %s: task already on queue", t.ID())
	}
	mq.ids[t.ID()] = true
	mq.pending.PushBack(t)
	return nil
}

func (mq *memQueue) Pull(ctx context.Context) (*Task, context.Context, context.CancelFunc, error) {
	if err := mq.acquire(ctx); err != nil {
		return nil, nil, nil, err
	}
	defer mq.release()
	if mq.pending.Len() == 0 {
		return nil, nil, nil, nil
	}
	t := mq.pending.PopFront()
	mq.running[t.ID()] = t
	tctx, cancel := context.WithCancel(mq.ctx)
	return t, tctx, cancel, nil
}

func (mq *memQueue) Drop(ctx context.Context, id string) error {
	if err := mq.acquire(ctx); err != nil {
		return err
	}
	defer mq.release()
	if t, ok := mq.running[id]; ok {
		delete(mq.running, id)
		mq.pending.PushBack(t)
	}
	return nil
}

func (mq *memQueue) Complete(ctx context.Context, id string) error {
	if err := mq.acquire(ctx); err != nil {
		return err
	}
	defer mq.release()
	if _, ok := mq.running[id]; ok {
		delete(mq.running, id)
		delete(mq.ids, id)
	}
	return nil
}

func (mq *memQueue) Count(ctx context.Context) (int, int, error) {
	if err := mq.acquire(ctx); err != nil {
		return 0, 0, err
	}
	defer mq.release()
	return mq.pending.Len(), len(mq.running), nil
}

func (mq *memQueue) Stop(ctx context.Context) error {
	mq.ctxCancel()
	return nil
}

func (mq *memQueue) String() string {
	p, r, _ := mq.Count(context.Background())
	return fmt.Sprintf("{Queue pending: %d running: %d}", p, r)
}

// acquire takes the queue's token, giving up when ctx is done first.
func (mq *memQueue) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case mq.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mq *memQueue) release() {
	<-mq.sem
}
