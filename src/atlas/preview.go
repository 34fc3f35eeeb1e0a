package atlas

import (
	"fmt"
	nImage "image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/seventv/AtlasProcessor/src/tilegrid"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

const (
	PreviewCell  = 100
	LabelSize    = 12
	LabelPadding = 5
	DashLength   = 5
)

var (
	GridColor   = color.NRGBA{R: 0xff, A: 0xff}
	BorderColor = color.NRGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff}
)

var (
	labelOnce sync.Once
	labelFace font.Face
)

func face() font.Face {
	labelOnce.Do(func() {
		fo, err := truetype.Parse(gomono.TTF)
		if err != nil {
			logrus.WithError(err).Warn("failed to parse label font")
			labelFace = basicfont.Face7x13
			return
		}
		labelFace = truetype.NewFace(fo, &truetype.Options{
			Size: LabelSize,
		})
	})
	return labelFace
}

// Preview lays the first Rows*Columns frames out on a sheet of fixed size
// cells, each outlined and labelled with its 1-based position.
func Preview(frames []image.Frame, spec tilegrid.Spec) (*nImage.NRGBA, error) {
	if !spec.Valid() {
		return nil, tilegrid.ErrInvalidSpec
	}
	if len(frames) == 0 {
		return nil, image.ErrEmptyInput
	}

	sizes := make([]nImage.Point, len(frames))
	for i := range frames {
		sizes[i] = nImage.Pt(PreviewCell, PreviewCell)
	}
	layout := spec.Compose(sizes)

	sheet := imaging.New(layout.Width(), layout.Height(), color.White)
	d := &font.Drawer{
		Dst:  sheet,
		Src:  nImage.NewUniform(color.Black),
		Face: face(),
	}
	ascent := d.Face.Metrics().Ascent

	for i, f := range frames[:layout.Used] {
		cell := layout.Cell(i)
		if !f.Empty() {
			draw.CatmullRom.Scale(sheet, cell, f.Pixels, f.Pixels.Bounds(), draw.Over, nil)
		}
		outline(sheet, cell, BorderColor)

		d.Dot = fixed.P(cell.Min.X+LabelPadding, cell.Min.Y+LabelPadding).Add(fixed.Point26_6{Y: ascent})
		d.DrawString(fmt.Sprintf("%d", i+1))
	}

	return sheet, nil
}

func outline(img *nImage.NRGBA, r nImage.Rectangle, c color.NRGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}

// Overlay returns a copy of atlas with dashed grid lines on the cell
// boundaries. The atlas itself is returned when the grid has a single cell.
func Overlay(atlas *nImage.NRGBA, spec tilegrid.Spec) *nImage.NRGBA {
	if atlas == nil || !spec.Valid() || !spec.Overlay() {
		return atlas
	}

	out := imaging.Clone(atlas)
	w, h := out.Rect.Dx(), out.Rect.Dy()

	for i := 1; i < spec.Rows; i++ {
		y := i * h / spec.Rows
		for x := 0; x < w; x++ {
			if (x/DashLength)%2 == 0 {
				out.SetNRGBA(x, y, GridColor)
			}
		}
	}

	for i := 1; i < spec.Columns; i++ {
		x := i * w / spec.Columns
		for y := 0; y < h; y++ {
			if (y/DashLength)%2 == 0 {
				out.SetNRGBA(x, y, GridColor)
			}
		}
	}

	return out
}
