package workspace

import (
	"fmt"
	nImage "image"
	"os"
	"path/filepath"

	"github.com/seventv/AtlasProcessor/src/atlas"
	"github.com/seventv/AtlasProcessor/src/containers"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/seventv/AtlasProcessor/src/slot"
	"github.com/seventv/AtlasProcessor/src/task"
	"github.com/sirupsen/logrus"
)

const (
	GifToSequence = "gif.to-sequence"
	GifToAtlas    = "gif.to-atlas"
	GifSave       = "gif.save"
)

var ErrNotGif = fmt.Errorf("file is not a gif")

// Gif is a GIF file opened in the GIF panel.
type Gif struct {
	Path   string
	Frames []image.Frame
}

// Preview is the first frame, nil for an empty Gif.
func (g Gif) Preview() *nImage.NRGBA {
	if len(g.Frames) == 0 {
		return nil
	}
	return g.Frames[0].Pixels
}

// Delays lists the decoded delay of every frame in hundredths of a second.
func (g Gif) Delays() []int {
	out := make([]int, len(g.Frames))
	for i, f := range g.Frames {
		out[i] = f.Delay
	}
	return out
}

type GifPanel struct {
	panel
	current *slot.Slot[Gif]
}

func newGifPanel(ws *Workspace, dir string) *GifPanel {
	return &GifPanel{
		panel: panel{ws: ws, name: "gif", outputDir: dir},
		current: slot.New(func(old Gif) {
			logrus.WithField("file", old.Path).Debug("gif released")
		}),
	}
}

// Load opens path as the current GIF.
func (p *GifPanel) Load(path string) bool {
	if err := p.open(path); err != nil {
		p.ws.fail(p.action("load"), "", err)
		return false
	}
	p.ws.info(p.action("load"), fmt.Sprintf("loaded gif %s", filepath.Base(path)))
	return true
}

func (p *GifPanel) open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &image.DecodeError{Path: path, Err: err}
	}
	if t, err := containers.ToType(data); err != nil || t != image.GIF {
		return &image.DecodeError{Path: path, Err: ErrNotGif}
	}

	frames, err := containers.DecodeAll(path)
	if err != nil {
		return err
	}

	p.current.Publish(Gif{Path: path, Frames: frames})
	return nil
}

func (p *GifPanel) Current() (Gif, bool) {
	return p.current.Get()
}

func (p *GifPanel) Clear() {
	p.current.Clear()
}

func (p *GifPanel) ready() ([]image.Frame, error) {
	g, ok := p.current.Get()
	if !ok || len(g.Frames) == 0 {
		return nil, image.ErrEmptyInput
	}
	return g.Frames, nil
}

// ToSequence replaces the sequence panel content with the GIF frames.
func (p *GifPanel) ToSequence() *task.Task {
	frames, err := p.ready()

	return p.ws.run(GifToSequence, err, func(t *task.Task) (outcome, error) {
		p.ws.Sequence.Set(frames)
		t.Published("sequence")
		return outcome{Message: fmt.Sprintf("%d frames sent to the sequence", len(frames)), Frames: len(frames)}, nil
	})
}

// ToAtlas composes the GIF frames into an atlas for the atlas panel.
func (p *GifPanel) ToAtlas() *task.Task {
	frames, err := p.ready()
	grid := p.ws.grid()
	bg := p.ws.ctx.Config().BackgroundColor()

	return p.ws.run(GifToAtlas, err, func(t *task.Task) (outcome, error) {
		img, err := atlas.SequenceToAtlas(frames, grid, bg)
		if err != nil {
			return outcome{}, err
		}

		p.ws.Atlas.Set(img)
		t.Published("atlas")

		used := min(len(frames), grid.Cells())
		return outcome{Message: fmt.Sprintf("atlas created from %d frames", used), Frames: used}, nil
	})
}

// Save re-quantizes the current GIF keeping each frame's own delay. Frames
// without one use the current frame rate.
func (p *GifPanel) Save() *task.Task {
	frames, err := p.ready()
	opts := p.ws.gifOptions(p.OutputDir(), "output")
	if g, ok := p.current.Get(); ok {
		opts.Delays = g.Delays()
	}

	return p.ws.run(GifSave, err, func(t *task.Task) (outcome, error) {
		return encodeAndOpen(p.ws, t, frames, opts)
	})
}
