package gif

import (
	"context"
	"fmt"
	nImage "image"
	"image/color"
	"image/draw"
	nGif "image/gif"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/seventv/AtlasProcessor/src/palette"
	"github.com/sirupsen/logrus"
)

const (
	MinFrameRate = 1
	MaxFrameRate = 120

	// one slot of the 256 entry table is kept for transparency
	MaxColors = 255

	TimestampLayout = "20060102_150405"
)

var (
	ErrFrameRate   = fmt.Errorf("frame rate must be between %d and %d", MinFrameRate, MaxFrameRate)
	ErrEmptyCanvas = fmt.Errorf("frames have no pixels")
	ErrNotDir      = fmt.Errorf("output path is not a directory")
)

var now = time.Now

type Options struct {
	FrameRate     int
	Dir           string
	Prefix        string
	Optimize      bool
	PaletteMethod palette.Method
	// Background fills transparent areas, white when nil.
	Background color.Color
	// Delays overrides the delay of each frame, in hundredths of a second.
	// Missing or non-positive entries use the FrameRate delay.
	Delays []int
}

// Delay converts a frame rate to a GIF delay in hundredths of a second,
// truncated and clamped to at least 1 so rates above 100 fps still give a
// visible delay. Zero for a non-positive rate.
func Delay(frameRate int) int {
	if frameRate <= 0 {
		return 0
	}
	return max(100/frameRate, 1)
}

func FileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.gif", prefix, t.Format(TimestampLayout))
}

// Encode writes frames as an endlessly looping GIF into opts.Dir and returns
// the path of the new file. Once started the encode runs to completion.
func Encode(ctx context.Context, frames []image.Frame, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &image.EncodeError{Err: err}
	}
	if len(frames) == 0 {
		return "", &image.EncodeError{Err: image.ErrEmptyInput}
	}
	if opts.FrameRate < MinFrameRate || opts.FrameRate > MaxFrameRate {
		return "", &image.EncodeError{Err: ErrFrameRate}
	}

	info, err := os.Stat(opts.Dir)
	if err != nil {
		return "", &image.EncodeError{Path: opts.Dir, Err: err}
	}
	if !info.IsDir() {
		return "", &image.EncodeError{Path: opts.Dir, Err: ErrNotDir}
	}

	start := time.Now()
	g, err := Build(frames, opts)
	if err != nil {
		return "", &image.EncodeError{Err: err}
	}

	file := filepath.Join(opts.Dir, FileName(opts.Prefix, now()))
	f, err := os.Create(file)
	if err != nil {
		return "", &image.EncodeError{Path: file, Err: err}
	}

	if err := nGif.EncodeAll(f, g); err != nil {
		_ = f.Close()
		_ = os.Remove(file)
		return "", &image.EncodeError{Path: file, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(file)
		return "", &image.EncodeError{Path: file, Err: err}
	}

	logrus.WithField("file", file).
		WithField("frames", len(g.Image)).
		WithField("colors", len(g.Config.ColorModel.(color.Palette))).
		WithField("took", time.Since(start)).
		Info("gif written")

	return file, nil
}

// Build quantizes frames against one global palette and assembles the GIF.
func Build(frames []image.Frame, opts Options) (*nGif.GIF, error) {
	w, h := 0, 0
	for _, f := range frames {
		w = max(w, f.Width())
		h = max(h, f.Height())
	}
	if w == 0 || h == 0 {
		return nil, ErrEmptyCanvas
	}

	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	flat := make([]nImage.Image, len(frames))
	for i, f := range frames {
		canvas := imaging.New(w, h, bg)
		if !f.Empty() {
			canvas = imaging.Overlay(canvas, f.Pixels, nImage.Point{}, 1)
		}
		flat[i] = canvas
	}

	opaque := palette.Extract(flat, MaxColors, opts.PaletteMethod)
	if len(opaque) == 0 {
		opaque = color.Palette{bg}
	}

	full := append(color.Palette{}, opaque...)
	transparent := uint8(0)
	if opts.Optimize {
		transparent = uint8(len(full))
		full = append(full, color.RGBA{})
	}

	bounds := nImage.Rect(0, 0, w, h)
	delay := Delay(opts.FrameRate)
	g := &nGif.GIF{
		Config: nImage.Config{
			ColorModel: full,
			Width:      w,
			Height:     h,
		},
		LoopCount: 0,
	}

	var prev *nImage.Paletted
	for i, img := range flat {
		p := nImage.NewPaletted(bounds, opaque)
		draw.FloydSteinberg.Draw(p, bounds, img, nImage.Point{})
		p.Palette = full

		out := p
		if opts.Optimize && prev != nil {
			out = diff(prev, p, transparent)
		}

		g.Image = append(g.Image, out)
		d := delay
		if i < len(opts.Delays) && opts.Delays[i] > 0 {
			d = opts.Delays[i]
		}
		g.Delay = append(g.Delay, d)
		g.Disposal = append(g.Disposal, nGif.DisposalNone)
		prev = p
	}

	return g, nil
}

// diff crops cur to the pixels that differ from prev and marks the unchanged
// ones inside the crop as transparent. Both frames must share bounds.
func diff(prev, cur *nImage.Paletted, transparent uint8) *nImage.Paletted {
	b := cur.Rect
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := cur.PixOffset(x, y)
			if cur.Pix[i] == prev.Pix[i] {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}

	if maxX < minX {
		out := nImage.NewPaletted(nImage.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Min.Y+1), cur.Palette)
		out.Pix[0] = transparent
		return out
	}

	rect := nImage.Rect(minX, minY, maxX+1, maxY+1)
	out := nImage.NewPaletted(rect, cur.Palette)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := cur.PixOffset(x, y)
			if cur.Pix[i] == prev.Pix[i] {
				out.Pix[out.PixOffset(x, y)] = transparent
			} else {
				out.Pix[out.PixOffset(x, y)] = cur.Pix[i]
			}
		}
	}

	return out
}
