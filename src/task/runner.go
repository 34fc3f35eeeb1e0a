package task

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrBusy = fmt.Errorf("action is already running")

// Tracker is told about every task the runner starts so the process can wait
// for them before exiting.
type Tracker interface {
	AddTask(n int)
	DoneTask()
}

// Runner allows a single in-flight task per action name.
type Runner struct {
	mtx     sync.Mutex
	running map[string]*Task
	tracker Tracker
}

func NewRunner(tracker Tracker) *Runner {
	return &Runner{
		running: map[string]*Task{},
		tracker: tracker,
	}
}

// Trigger starts fn as the task for action, or fails with ErrBusy while a
// previous task for the same action has not finished.
func (r *Runner) Trigger(action string, fn Func) (*Task, error) {
	r.mtx.Lock()
	if _, ok := r.running[action]; ok {
		r.mtx.Unlock()
		logrus.WithField("action", action).Debug("action busy")
		return nil, ErrBusy
	}

	t := New(action, fn)
	r.running[action] = t
	r.mtx.Unlock()

	if r.tracker != nil {
		r.tracker.AddTask(1)
	}

	// released before Done fires so a waiter can trigger again right away
	t.finish = func() {
		r.mtx.Lock()
		delete(r.running, action)
		r.mtx.Unlock()

		if r.tracker != nil {
			r.tracker.DoneTask()
		}
	}

	t.Start()
	return t, nil
}

func (r *Runner) Busy(action string) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	_, ok := r.running[action]
	return ok
}

// Running returns the in-flight task for action, if any.
func (r *Runner) Running(action string) (*Task, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	t, ok := r.running[action]
	return t, ok
}
