package gif

import (
	"fmt"
	nImage "image"
	"image/draw"
	nGif "image/gif"
	"io"

	"github.com/disintegration/imaging"
)

var ErrNoFrames = fmt.Errorf("gif has no frames")

// Animation is a decoded GIF where every frame is a full canvas.
type Animation struct {
	Frames []*nImage.NRGBA
	Delays []int
}

// Decode reads every frame from r and composites it onto the logical screen
// following each frame's disposal method.
func Decode(r io.Reader) (anim Animation, err error) {
	// image/gif panics on some truncated files
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("gif decode panic: %v", rec)
		}
	}()

	g, err := nGif.DecodeAll(r)
	if err != nil {
		return Animation{}, err
	}
	if len(g.Image) == 0 {
		return Animation{}, ErrNoFrames
	}

	w, h := g.Config.Width, g.Config.Height
	for _, f := range g.Image {
		w = max(w, f.Rect.Max.X)
		h = max(h, f.Rect.Max.Y)
	}

	canvas := nImage.NewNRGBA(nImage.Rect(0, 0, w, h))
	anim.Frames = make([]*nImage.NRGBA, 0, len(g.Image))
	anim.Delays = make([]int, 0, len(g.Image))

	for i, f := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *nImage.NRGBA
		if disposal == nGif.DisposalPrevious {
			previous = imaging.Clone(canvas)
		}

		draw.Draw(canvas, f.Rect, f, f.Rect.Min, draw.Over)
		anim.Frames = append(anim.Frames, imaging.Clone(canvas))

		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}
		anim.Delays = append(anim.Delays, delay)

		switch disposal {
		case nGif.DisposalBackground:
			draw.Draw(canvas, f.Rect, nImage.Transparent, nImage.Point{}, draw.Src)
		case nGif.DisposalPrevious:
			canvas = previous
		}
	}

	return anim, nil
}
