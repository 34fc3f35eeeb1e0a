package workspace

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/seventv/AtlasProcessor/src/configure"
	"github.com/seventv/AtlasProcessor/src/containers/gif"
	"github.com/seventv/AtlasProcessor/src/global"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/seventv/AtlasProcessor/src/palette"
	"github.com/seventv/AtlasProcessor/src/task"
	"github.com/seventv/AtlasProcessor/src/tilegrid"
	"github.com/sirupsen/logrus"
)

var ErrNotDir = fmt.Errorf("not a directory")

// Notification is what the user sees after an action. Errors never leave the
// workspace in any other form.
type Notification struct {
	Level   logrus.Level `json:"level"`
	Action  string       `json:"action"`
	TaskID  string       `json:"task_id,omitempty"`
	Message string       `json:"message"`
	// Path is the file or directory an action wrote, if any.
	Path   string    `json:"path,omitempty"`
	Frames int       `json:"frames,omitempty"`
	Time   time.Time `json:"time"`
}

// Workspace wires the three panels together. Each panel mutates only its own
// state; results cross to a sibling panel through that panel's setter.
type Workspace struct {
	ctx global.Context

	Sequence *SequencePanel
	Atlas    *AtlasPanel
	Gif      *GifPanel

	mtx   sync.Mutex
	notes []Notification
	subs  []func(Notification)
}

func New(ctx global.Context) *Workspace {
	w := &Workspace{ctx: ctx}

	dir := ctx.Config().OutputDir
	if dir == "" {
		dir = configure.DefaultOutputDir()
	}

	w.Sequence = newSequencePanel(w, dir)
	w.Atlas = newAtlasPanel(w, dir)
	w.Gif = newGifPanel(w, dir)

	return w
}

func (w *Workspace) Settings() *configure.Settings {
	return w.ctx.Settings()
}

func (w *Workspace) grid() tilegrid.Spec {
	return w.ctx.Settings().Grid()
}

func (w *Workspace) gifOptions(dir, prefix string) gif.Options {
	cfg := w.ctx.Config()
	return gif.Options{
		FrameRate:     w.ctx.Settings().FrameRate(),
		Dir:           dir,
		Prefix:        prefix,
		Optimize:      cfg.Optimize,
		PaletteMethod: palette.ParseMethod(cfg.PaletteMethod),
	}
}

// ClearAll empties every panel.
func (w *Workspace) ClearAll() {
	w.Sequence.Clear()
	w.Atlas.Clear()
	w.Gif.Clear()
	w.notify(Notification{Level: logrus.InfoLevel, Action: "clear-all", Message: "all panels cleared"})
}

// Subscribe registers fn to receive every future notification.
func (w *Workspace) Subscribe(fn func(Notification)) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.subs = append(w.subs, fn)
}

// Notifications returns every notification raised so far, oldest first.
func (w *Workspace) Notifications() []Notification {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return append([]Notification(nil), w.notes...)
}

func (w *Workspace) notify(n Notification) Notification {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}

	w.mtx.Lock()
	w.notes = append(w.notes, n)
	subs := append([]func(Notification){}, w.subs...)
	w.mtx.Unlock()

	for _, fn := range subs {
		fn(n)
	}
	return n
}

func (w *Workspace) info(action, msg string) {
	w.notify(Notification{Level: logrus.InfoLevel, Action: action, Message: msg})
}

// fail turns err into a notification. An aggregated error yields one
// notification per failure.
func (w *Workspace) fail(action, taskID string, err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			w.fail(action, taskID, e)
		}
		return
	}

	w.notify(Notification{
		Level:   levelOf(err),
		Action:  action,
		TaskID:  taskID,
		Message: describe(err),
	})
}

func levelOf(err error) logrus.Level {
	switch {
	case errors.Is(err, image.ErrEmptyInput), errors.Is(err, task.ErrBusy):
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func describe(err error) string {
	var (
		decErr *image.DecodeError
		idxErr *image.IndexError
	)

	switch {
	case errors.Is(err, image.ErrEmptyInput):
		return "nothing to convert, add images first"
	case errors.Is(err, task.ErrBusy):
		return "this conversion is already running"
	case errors.As(err, &decErr):
		return fmt.Sprintf("could not load %s: %s", decErr.Path, decErr.Err.Error())
	case errors.As(err, &idxErr):
		return fmt.Sprintf("invalid position: %s", idxErr.Error())
	default:
		return err.Error()
	}
}

// outcome is what a successful action reports back.
type outcome struct {
	Message string
	Path    string
	Frames  int
}

type actionFunc func(t *task.Task) (outcome, error)

// run starts fn as action on the shared runner once ready is nil. Every
// failure, including a rejected start, ends up as a notification.
func (w *Workspace) run(action string, ready error, fn actionFunc) *task.Task {
	if ready != nil {
		w.fail(action, "", ready)
		return nil
	}

	t, err := w.ctx.Instances().Runner.Trigger(action, func(t *task.Task) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("%w: %v", task.ErrPanic, rec)
			}
			if err != nil {
				w.fail(action, t.ID().String(), err)
			}
		}()

		out, err := fn(t)
		if err != nil {
			return err
		}

		w.notify(Notification{
			Level:   logrus.InfoLevel,
			Action:  action,
			TaskID:  t.ID().String(),
			Message: out.Message,
			Path:    out.Path,
			Frames:  out.Frames,
		})
		return nil
	})
	if err != nil {
		w.fail(action, "", err)
		return nil
	}

	return t
}

// panel holds what every panel shares: its name and output directory.
type panel struct {
	ws   *Workspace
	name string

	mtx       sync.RWMutex
	outputDir string
}

func (p *panel) OutputDir() string {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.outputDir
}

// SetOutputDir changes where this panel writes. The directory must exist.
func (p *panel) SetOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		p.ws.fail(p.name+".output-dir", "", err)
		return err
	}
	if !info.IsDir() {
		err := fmt.Errorf("%s: %w", dir, ErrNotDir)
		p.ws.fail(p.name+".output-dir", "", err)
		return err
	}

	p.mtx.Lock()
	p.outputDir = dir
	p.mtx.Unlock()
	return nil
}

func (p *panel) action(name string) string {
	return p.name + "." + name
}
