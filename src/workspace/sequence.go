package workspace

import (
	"fmt"
	nImage "image"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/seventv/AtlasProcessor/src/atlas"
	"github.com/seventv/AtlasProcessor/src/containers/avi"
	"github.com/seventv/AtlasProcessor/src/containers/gif"
	"github.com/seventv/AtlasProcessor/src/containers/png"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/seventv/AtlasProcessor/src/sequence"
	"github.com/seventv/AtlasProcessor/src/task"
	"github.com/sirupsen/logrus"
)

const (
	SequenceToAtlas = "sequence.to-atlas"
	SequenceToGif   = "sequence.to-gif"
	SequenceSave    = "sequence.save"
	SequenceAvi     = "sequence.to-avi"
	SequencePreview = "sequence.preview"
)

type SequencePanel struct {
	panel
	store *sequence.Store
}

func newSequencePanel(ws *Workspace, dir string) *SequencePanel {
	return &SequencePanel{
		panel: panel{ws: ws, name: "sequence", outputDir: dir},
		store: sequence.New(),
	}
}

func (p *SequencePanel) Frames() []image.Frame {
	return p.store.Frames()
}

func (p *SequencePanel) Len() int {
	return p.store.Len()
}

// Load appends files and directories in order and returns how many files
// were added. Each file that fails is reported on its own.
func (p *SequencePanel) Load(paths ...string) int {
	var (
		added int
		err   error
	)
	for _, path := range paths {
		var (
			n int
			e error
		)
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			n, e = p.store.AppendDir(path)
		} else {
			n, e = p.store.AppendFiles([]string{path})
		}
		added += n
		if e != nil {
			err = multierror.Append(err, e)
		}
	}

	if err != nil {
		p.ws.fail(p.action("load"), "", err)
	}
	if added > 0 {
		p.ws.info(p.action("load"), fmt.Sprintf("loaded %d images", added))
	}
	return added
}

// Reorder handles dropping the item at from onto the item at to.
func (p *SequencePanel) Reorder(from, to int) bool {
	if err := p.store.Reorder(from, to); err != nil {
		p.ws.fail(p.action("reorder"), "", err)
		return false
	}
	return true
}

func (p *SequencePanel) Clear() {
	p.store.Clear()
}

// Set replaces the sequence with copies of frames.
func (p *SequencePanel) Set(frames []image.Frame) {
	p.store.Replace(frames)
	logrus.WithField("frames", len(frames)).Debug("sequence replaced")
}

func (p *SequencePanel) Thumbnails() []nImage.Image {
	return p.store.Thumbnails(p.ws.ctx.Config().ThumbnailSize)
}

// Preview renders the numbered layout sheet for the current grid.
func (p *SequencePanel) Preview() *nImage.NRGBA {
	sheet, err := atlas.Preview(p.store.Frames(), p.ws.grid())
	if err != nil {
		p.ws.fail(p.action("preview"), "", err)
		return nil
	}
	return sheet
}

func (p *SequencePanel) ready() ([]image.Frame, error) {
	frames := p.store.Frames()
	if len(frames) == 0 {
		return nil, image.ErrEmptyInput
	}
	return frames, nil
}

// ToAtlas composes the sequence into an atlas and hands it to the atlas
// panel.
func (p *SequencePanel) ToAtlas() *task.Task {
	frames, err := p.ready()
	grid := p.ws.grid()
	bg := p.ws.ctx.Config().BackgroundColor()

	return p.ws.run(SequenceToAtlas, err, func(t *task.Task) (outcome, error) {
		img, err := atlas.SequenceToAtlas(frames, grid, bg)
		if err != nil {
			return outcome{}, err
		}
		t.Progress(1, "atlas composed")

		p.ws.Atlas.Set(img)
		t.Published("atlas")

		return outcome{
			Message: fmt.Sprintf("atlas %dx%d created from %d images", img.Rect.Dx(), img.Rect.Dy(), min(len(frames), grid.Cells())),
			Frames:  min(len(frames), grid.Cells()),
		}, nil
	})
}

// ToGif encodes the sequence and opens the result in the GIF panel.
func (p *SequencePanel) ToGif() *task.Task {
	frames, err := p.ready()
	opts := p.ws.gifOptions(p.OutputDir(), "sequence")

	return p.ws.run(SequenceToGif, err, func(t *task.Task) (outcome, error) {
		return encodeAndOpen(p.ws, t, frames, opts)
	})
}

func encodeAndOpen(ws *Workspace, t *task.Task, frames []image.Frame, opts gif.Options) (outcome, error) {
	file, err := gif.Encode(ws.ctx, frames, opts)
	if err != nil {
		return outcome{}, err
	}
	t.Progress(1, "gif written")

	if err := ws.Gif.open(file); err != nil {
		return outcome{}, err
	}
	t.Published("gif")

	return outcome{
		Message: fmt.Sprintf("gif saved to %s", file),
		Path:    file,
		Frames:  len(frames),
	}, nil
}

// Save writes every frame as 1.png, 2.png, ... into a new directory.
func (p *SequencePanel) Save() *task.Task {
	frames, err := p.ready()
	dir := p.OutputDir()

	return p.ws.run(SequenceSave, err, func(t *task.Task) (outcome, error) {
		out, err := png.SaveSequence(frames, dir, "Sequence")
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			Message: fmt.Sprintf("saved %d images to %s", len(frames), out),
			Path:    out,
			Frames:  len(frames),
		}, nil
	})
}

// SavePreview writes the numbered layout sheet as a PNG.
func (p *SequencePanel) SavePreview() *task.Task {
	frames, err := p.ready()
	grid := p.ws.grid()
	dir := p.OutputDir()

	return p.ws.run(SequencePreview, err, func(t *task.Task) (outcome, error) {
		sheet, err := atlas.Preview(frames, grid)
		if err != nil {
			return outcome{}, err
		}
		file, err := png.SaveAtlas(sheet, dir, "preview")
		if err != nil {
			return outcome{}, err
		}
		return outcome{Message: fmt.Sprintf("preview saved to %s", file), Path: file, Frames: 1}, nil
	})
}

// ExportAvi writes the sequence as a Motion-JPEG AVI at the current frame
// rate.
func (p *SequencePanel) ExportAvi() *task.Task {
	frames, err := p.ready()
	dir := p.OutputDir()
	fps := p.ws.Settings().FrameRate()

	return p.ws.run(SequenceAvi, err, func(t *task.Task) (outcome, error) {
		file, err := avi.Encode(frames, fps, dir, "sequence")
		if err != nil {
			return outcome{}, err
		}
		return outcome{Message: fmt.Sprintf("avi saved to %s", file), Path: file, Frames: len(frames)}, nil
	})
}
