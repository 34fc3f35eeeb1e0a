package workspace

import (
	"fmt"
	nImage "image"

	"github.com/seventv/AtlasProcessor/src/atlas"
	"github.com/seventv/AtlasProcessor/src/containers"
	"github.com/seventv/AtlasProcessor/src/containers/png"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/seventv/AtlasProcessor/src/slot"
	"github.com/seventv/AtlasProcessor/src/task"
	"github.com/sirupsen/logrus"
)

const (
	AtlasToSequence = "atlas.to-sequence"
	AtlasToGif      = "atlas.to-gif"
	AtlasSave       = "atlas.save"
	AtlasOverlay    = "atlas.overlay"
)

type AtlasPanel struct {
	panel
	current *slot.Slot[*nImage.NRGBA]
}

func newAtlasPanel(ws *Workspace, dir string) *AtlasPanel {
	return &AtlasPanel{
		panel: panel{ws: ws, name: "atlas", outputDir: dir},
		current: slot.New(func(old *nImage.NRGBA) {
			if old == nil {
				return
			}
			logrus.WithField("size", old.Rect.Size()).Debug("atlas released")
		}),
	}
}

// Load replaces the current atlas with the first image in path.
func (p *AtlasPanel) Load(path string) bool {
	f, err := containers.Decode(path)
	if err != nil {
		p.ws.fail(p.action("load"), "", err)
		return false
	}

	p.current.Publish(f.Pixels)
	p.ws.info(p.action("load"), fmt.Sprintf("loaded atlas %s", f.Name))
	return true
}

// Set replaces the current atlas.
func (p *AtlasPanel) Set(img *nImage.NRGBA) {
	p.current.Publish(img)
}

func (p *AtlasPanel) Current() (*nImage.NRGBA, bool) {
	return p.current.Get()
}

func (p *AtlasPanel) Clear() {
	p.current.Clear()
}

// Overlay returns the current atlas with the grid drawn over it, nil when no
// atlas is loaded.
func (p *AtlasPanel) Overlay() *nImage.NRGBA {
	img, ok := p.current.Get()
	if !ok {
		return nil
	}
	return atlas.Overlay(img, p.ws.grid())
}

func (p *AtlasPanel) ready() (*nImage.NRGBA, error) {
	img, ok := p.current.Get()
	if !ok || img == nil || img.Rect.Empty() {
		return nil, image.ErrEmptyInput
	}
	return img, nil
}

// ToSequence cuts the atlas with the current grid and replaces the sequence
// panel content with the cells.
func (p *AtlasPanel) ToSequence() *task.Task {
	img, err := p.ready()
	grid := p.ws.grid()

	return p.ws.run(AtlasToSequence, err, func(t *task.Task) (outcome, error) {
		frames, err := atlas.AtlasToSequence(img, grid)
		if err != nil {
			return outcome{}, err
		}
		t.Progress(1, "atlas split")

		p.ws.Sequence.Set(frames)
		t.Published("sequence")

		return outcome{Message: fmt.Sprintf("atlas split into %d images", len(frames)), Frames: len(frames)}, nil
	})
}

// ToGif cuts the atlas and encodes the cells in row-major order.
func (p *AtlasPanel) ToGif() *task.Task {
	img, err := p.ready()
	grid := p.ws.grid()
	opts := p.ws.gifOptions(p.OutputDir(), "atlas")

	return p.ws.run(AtlasToGif, err, func(t *task.Task) (outcome, error) {
		frames, err := atlas.AtlasToSequence(img, grid)
		if err != nil {
			return outcome{}, err
		}
		t.Progress(0.5, "atlas split")

		return encodeAndOpen(p.ws, t, frames, opts)
	})
}

func (p *AtlasPanel) Save() *task.Task {
	img, err := p.ready()
	dir := p.OutputDir()

	return p.ws.run(AtlasSave, err, func(t *task.Task) (outcome, error) {
		file, err := png.SaveAtlas(img, dir, "atlas")
		if err != nil {
			return outcome{}, err
		}
		return outcome{Message: fmt.Sprintf("atlas saved to %s", file), Path: file, Frames: 1}, nil
	})
}

// SaveOverlay writes the atlas with its grid lines as a PNG.
func (p *AtlasPanel) SaveOverlay() *task.Task {
	img, err := p.ready()
	grid := p.ws.grid()
	dir := p.OutputDir()

	return p.ws.run(AtlasOverlay, err, func(t *task.Task) (outcome, error) {
		file, err := png.SaveAtlas(atlas.Overlay(img, grid), dir, "overlay")
		if err != nil {
			return outcome{}, err
		}
		return outcome{Message: fmt.Sprintf("overlay saved to %s", file), Path: file, Frames: 1}, nil
	})
}
