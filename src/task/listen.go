package task

import (
	"github.com/seventv/AtlasProcessor/src/job"
	"github.com/sirupsen/logrus"
)

// Watch forwards every event of t to fn until the task finishes and returns
// the result record.
func Watch(t *Task, fn func(TaskEvent)) job.Result {
	for event := range t.Events() {
		if fn != nil {
			fn(event)
		}
	}
	<-t.Done()

	res := job.Result{
		TaskID:  t.ID().String(),
		Action:  t.Action(),
		Success: t.Failed() == nil,
	}
	if err := t.Failed(); err != nil {
		res.Error = err.Error()
	}

	logrus.WithField("task", res.TaskID).WithField("success", res.Success).Debug("finished task")
	return res
}
