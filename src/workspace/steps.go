package workspace

import (
	"time"

	"github.com/seventv/AtlasProcessor/src/job"
	"github.com/seventv/AtlasProcessor/src/task"
	"github.com/sirupsen/logrus"
)

// Run performs one job step from a clean workspace: it loads the inputs into
// the panel the action starts from, then runs the chain of panel actions the
// step needs, each after the previous one finished.
func (w *Workspace) Run(step job.Step) job.Result {
	w.ClearAll()

	res := job.Result{Action: string(step.Action)}
	mark := len(w.Notifications())
	start := time.Now()

	var chain []func() *task.Task
	switch step.Action {
	case job.ToAtlas:
		w.Sequence.Load(step.Inputs...)
		chain = []func() *task.Task{w.Sequence.ToAtlas, w.Atlas.Save}
	case job.ToGif:
		w.Sequence.Load(step.Inputs...)
		chain = []func() *task.Task{w.Sequence.ToGif}
	case job.Preview:
		w.Sequence.Load(step.Inputs...)
		chain = []func() *task.Task{w.Sequence.SavePreview}
	case job.ToAvi:
		w.Sequence.Load(step.Inputs...)
		chain = []func() *task.Task{w.Sequence.ExportAvi}
	case job.ToSequence, job.AtlasToGif, job.Overlay:
		if len(step.Inputs) > 0 {
			w.Atlas.Load(step.Inputs[0])
		}
		switch step.Action {
		case job.ToSequence:
			chain = []func() *task.Task{w.Atlas.ToSequence, w.Sequence.Save}
		case job.AtlasToGif:
			chain = []func() *task.Task{w.Atlas.ToGif}
		default:
			chain = []func() *task.Task{w.Atlas.SaveOverlay}
		}
	case job.GifToSequence, job.GifToAtlas:
		if len(step.Inputs) > 0 {
			w.Gif.Load(step.Inputs[0])
		}
		if step.Action == job.GifToSequence {
			chain = []func() *task.Task{w.Gif.ToSequence, w.Sequence.Save}
		} else {
			chain = []func() *task.Task{w.Gif.ToAtlas, w.Atlas.Save}
		}
	default:
		res.Error = job.ErrUnknownAction.Error()
		return res
	}

	for _, next := range chain {
		if err := w.ctx.Err(); err != nil {
			res.Error = err.Error()
			return res
		}

		t := next()
		if t == nil {
			res.Error = w.lastProblem(mark)
			return res
		}

		r := task.Watch(t, func(e task.TaskEvent) {
			logrus.WithField("action", e.Action).WithField("event", e.Type).Debug(e.Message)
		})
		res.TaskID = r.TaskID
		if !r.Success {
			res.Error = r.Error
			return res
		}
	}

	res.Success = true
	for _, n := range w.Notifications()[mark:] {
		if n.Path == "" {
			continue
		}
		f, err := job.Describe(n.Path, n.Frames, time.Since(start))
		if err != nil {
			logrus.WithError(err).Warn("failed to describe output")
			continue
		}
		res.Files = append(res.Files, f)
	}

	return res
}

func (w *Workspace) lastProblem(mark int) string {
	notes := w.Notifications()[mark:]
	for i := len(notes) - 1; i >= 0; i-- {
		if notes[i].Level <= logrus.WarnLevel {
			return notes[i].Message
		}
	}
	return "action did not start"
}
