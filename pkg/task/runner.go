package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/semaphore"
)

// Runner executes task work functions in the background, bounded by a
// worker limit. A task moves pending -> processing when a worker picks
// it up, and reaches exactly one terminal state when work returns.
type Runner struct {
	store Store
	sem   *semaphore.Weighted
}

const DefaultWorkers = 4

func NewRunner(store Store, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{
		store: store,
		sem:   semaphore.NewWeighted(int64(workers)),
	}
}

// Work produces the result of a task. Returning an error fails the
// task with the error message.
type Work func(ctx context.Context) (*Result, error)

// Submit creates a task and schedules work for it. It returns as soon
// as the task exists; callers poll the store for progress.
func (r *Runner) Submit(ctx context.Context, work Work) (*Task, error) {
	t, err := r.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	go r.run(t.ID, work)
	return t, nil
}

func (r *Runner) run(id string, work Work) {
	ctx := context.Background()
	if err := r.sem.Acquire(ctx, 1); err != nil {
		r.fail(ctx, id, err)
		return
	}
	defer r.sem.Release(1)

	if _, err := r.store.Update(ctx, id, func(t *Task) error {
		if t.Status != StatusPending {
			return fmt.Errorf("task %s is %s, not pending", id, t.Status)
		}
		t.Status = StatusProcessing
		return nil
	}); err != nil {
		slog.Error("task transition failed", "task", id, "err", err)
		return
	}

	res, err := func() (res *Result, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
				slog.Error("task panicked", "task", id, "panic", p, "stack", string(debug.Stack()))
			}
		}()
		return work(ctx)
	}()

	if err != nil {
		r.fail(ctx, id, err)
		return
	}
	if res == nil {
		res = &Result{}
	}
	if res.GeneratedAt.IsZero() {
		res.GeneratedAt = time.Now().UTC()
	}
	if _, err := r.store.Update(ctx, id, func(t *Task) error {
		t.Status = StatusCompleted
		t.Result = res
		t.Error = ""
		return nil
	}); err != nil {
		slog.Error("task completion not recorded", "task", id, "err", err)
	}
}

func (r *Runner) fail(ctx context.Context, id string, cause error) {
	if _, err := r.store.Update(ctx, id, func(t *Task) error {
		t.Status = StatusFailed
		t.Error = cause.Error()
		return nil
	}); err != nil {
		slog.Error("task failure not recorded", "task", id, "err", err)
	}
}
