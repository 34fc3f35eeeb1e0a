package task

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mtx         sync.Mutex
	added, done int
}

func (c *counter) AddTask(n int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.added += n
}

func (c *counter) DoneTask() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.done++
}

func collect(t *Task) []TaskEventType {
	types := []TaskEventType{}
	for e := range t.Events() {
		types = append(types, e.Type)
	}
	return types
}

func TestTaskCompletes(t *testing.T) {
	tsk := New("sequence.to-gif", func(t *Task) error {
		t.Progress(0.5, "half")
		t.Published("gif")
		return nil
	})
	tsk.Start()
	tsk.Start()

	assert.Equal(t, []TaskEventType{Started, Progress, Published, Completed}, collect(tsk))
	<-tsk.Done()
	assert.True(t, tsk.Completed())
	assert.NoError(t, tsk.Failed())
	assert.Equal(t, byte(7), tsk.ID()[6]>>4)
}

func TestTaskFails(t *testing.T) {
	boom := errors.New("boom")
	tsk := New("atlas.to-gif", func(*Task) error { return boom })
	tsk.Start()

	assert.Equal(t, []TaskEventType{Started, Failed}, collect(tsk))
	assert.ErrorIs(t, tsk.Failed(), boom)
}

func TestTaskRecoversPanic(t *testing.T) {
	tsk := New("x", func(*Task) error { panic("bad") })
	tsk.Start()
	<-tsk.Done()
	assert.ErrorIs(t, tsk.Failed(), ErrPanic)
}

func TestRunnerSingleInFlight(t *testing.T) {
	c := &counter{}
	r := NewRunner(c)
	release := make(chan struct{})

	first, err := r.Trigger("sequence.to-atlas", func(*Task) error {
		<-release
		return nil
	})
	require.NoError(t, err)
	assert.True(t, r.Busy("sequence.to-atlas"))

	_, err = r.Trigger("sequence.to-atlas", func(*Task) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)

	other, err := r.Trigger("atlas.to-gif", func(*Task) error { return nil })
	require.NoError(t, err)
	<-other.Done()

	close(release)
	<-first.Done()
	assert.False(t, r.Busy("sequence.to-atlas"))

	again, err := r.Trigger("sequence.to-atlas", func(*Task) error { return nil })
	require.NoError(t, err)
	<-again.Done()

	c.mtx.Lock()
	defer c.mtx.Unlock()
	assert.Equal(t, 3, c.added)
	assert.Equal(t, 3, c.done)
}

func TestWatch(t *testing.T) {
	tsk := New("gif.save", func(*Task) error { return errors.New("disk full") })
	tsk.Start()

	seen := 0
	res := Watch(tsk, func(TaskEvent) { seen++ })
	assert.Equal(t, 2, seen)
	assert.False(t, res.Success)
	assert.Equal(t, "disk full", res.Error)
	assert.Equal(t, "gif.save", res.Action)
	assert.Equal(t, tsk.ID().String(), res.TaskID)
}
