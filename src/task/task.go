package task

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrPanic = fmt.Errorf("task panicked")

// Func is the body of a conversion. It runs on its own goroutine and may
// report progress through t.
type Func func(t *Task) error

type Task struct {
	id     uuid.UUID
	action string
	fn     Func

	mtx       sync.Mutex
	started   bool
	completed bool
	failed    error

	events chan TaskEvent
	done   chan struct{}
	finish func()
}

func New(action string, fn Func) *Task {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return &Task{
		id:     id,
		action: action,
		fn:     fn,
		events: make(chan TaskEvent, 32),
		done:   make(chan struct{}),
	}
}

func (t *Task) ID() uuid.UUID {
	return t.id
}

func (t *Task) Action() string {
	return t.action
}

// Start runs the task once. A started task always runs to completion.
func (t *Task) Start() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.started {
		return
	}

	t.started = true

	go t.start()
}

func (t *Task) start() {
	defer close(t.done)
	defer close(t.events)
	defer func() {
		if t.finish != nil {
			t.finish()
		}
	}()

	l := logrus.WithField("task", t.id.String()).WithField("action", t.action)
	start := time.Now()

	t.emit(TaskEvent{Type: Started})
	l.Debug("task started")

	err := t.run()

	t.mtx.Lock()
	t.completed = true
	t.failed = err
	t.mtx.Unlock()

	if err != nil {
		t.emit(TaskEvent{Type: Failed, Message: err.Error()})
		l.WithError(err).WithField("took", time.Since(start)).Warn("task failed")
		return
	}

	t.emit(TaskEvent{Type: Completed})
	l.WithField("took", time.Since(start)).Debug("task completed")
}

func (t *Task) run() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, rec)
		}
	}()

	return t.fn(t)
}

// Progress reports a fraction in [0,1] of the work done.
func (t *Task) Progress(done float64, msg string) {
	t.emit(TaskEvent{Type: Progress, Progress: done, Message: msg})
}

// Published reports that a result was handed to target.
func (t *Task) Published(target string) {
	t.emit(TaskEvent{Type: Published, Message: target})
}

// emit never blocks; events that do not fit the buffer are dropped.
func (t *Task) emit(e TaskEvent) {
	e.TaskID = t.id.String()
	e.Action = t.action
	e.Timestamp = time.Now()

	select {
	case t.events <- e:
	default:
		logrus.WithField("task", e.TaskID).WithField("type", e.Type).Debug("event dropped")
	}
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) Events() <-chan TaskEvent {
	return t.events
}

func (t *Task) Completed() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.completed
}

func (t *Task) Failed() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.failed
}

func (t *Task) Started() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.started
}
