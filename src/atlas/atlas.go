package atlas

import (
	"fmt"
	nImage "image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/seventv/AtlasProcessor/src/tilegrid"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// SequenceToAtlas draws the first Rows*Columns frames in row-major order onto
// one canvas. Every cell is as large as the largest frame and each frame is
// scaled to fill its cell. Unused cells keep the background colour.
func SequenceToAtlas(frames []image.Frame, spec tilegrid.Spec, background color.Color) (*nImage.NRGBA, error) {
	if !spec.Valid() {
		return nil, tilegrid.ErrInvalidSpec
	}
	if len(frames) == 0 {
		return nil, image.ErrEmptyInput
	}
	if background == nil {
		background = color.White
	}

	sizes := make([]nImage.Point, len(frames))
	for i, f := range frames {
		sizes[i] = nImage.Pt(f.Width(), f.Height())
	}

	layout := spec.Compose(sizes)
	if layout.Empty() {
		return nil, image.ErrEmptyInput
	}
	if len(frames) > layout.Used {
		logrus.WithField("grid", spec.String()).
			WithField("dropped", len(frames)-layout.Used).
			Debug("sequence longer than grid")
	}

	canvas := imaging.New(layout.Width(), layout.Height(), background)
	for i, f := range frames[:layout.Used] {
		if f.Empty() {
			continue
		}
		draw.CatmullRom.Scale(canvas, layout.Cell(i), f.Pixels, f.Pixels.Bounds(), draw.Over, nil)
	}

	return canvas, nil
}

// AtlasToSequence cuts atlas into exactly Rows*Columns frames in row-major
// order. Each frame owns its pixels.
func AtlasToSequence(atlas *nImage.NRGBA, spec tilegrid.Spec) ([]image.Frame, error) {
	if !spec.Valid() {
		return nil, tilegrid.ErrInvalidSpec
	}
	if atlas == nil || atlas.Rect.Empty() {
		return nil, image.ErrEmptyInput
	}

	b := atlas.Bounds()
	rects := spec.Split(b.Dx(), b.Dy())
	frames := make([]image.Frame, len(rects))
	for i, r := range rects {
		f := image.Frame{Name: fmt.Sprintf("cell %d", i+1)}
		if r.Empty() {
			f.Pixels = nImage.NewNRGBA(nImage.Rect(0, 0, 0, 0))
		} else {
			f.Pixels = imaging.Crop(atlas, r.Add(b.Min))
		}
		frames[i] = f
	}

	return frames, nil
}
