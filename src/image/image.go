package image

import (
	nImage "image"
	"image/draw"
	"strconv"
	"strings"
)

// Frame is a single decoded raster together with the file it came from.
// Frames of an animated GIF have a Path of the form "file.gif#N"; frames built
// in memory (atlas crops) carry an empty Path.
type Frame struct {
	Path   string
	Name   string
	Pixels *nImage.NRGBA
	// Delay is the GIF delay the frame was decoded with, in hundredths of a
	// second. Zero for still images.
	Delay int
}

func NewFrame(path, name string, img nImage.Image) Frame {
	return Frame{
		Path:   path,
		Name:   name,
		Pixels: ToNRGBA(img),
	}
}

func (f Frame) Width() int {
	if f.Pixels == nil {
		return 0
	}
	return f.Pixels.Rect.Dx()
}

func (f Frame) Height() int {
	if f.Pixels == nil {
		return 0
	}
	return f.Pixels.Rect.Dy()
}

func (f Frame) Empty() bool {
	return f.Width() == 0 || f.Height() == 0
}

// Clone returns a deep copy so the receiver of a hand-off never shares pixel
// memory with the sender.
func (f Frame) Clone() Frame {
	out := Frame{Path: f.Path, Name: f.Name, Delay: f.Delay}
	if f.Pixels != nil {
		out.Pixels = ToNRGBA(f.Pixels)
	}
	return out
}

// Source is the file the frame was decoded from, without the "#N" frame
// suffix. Empty for frames built in memory.
func (f Frame) Source() string {
	i := strings.LastIndexByte(f.Path, '#')
	if i < 0 {
		return f.Path
	}
	if _, err := strconv.Atoi(f.Path[i+1:]); err != nil {
		return f.Path
	}
	return f.Path[:i]
}

// ToNRGBA copies img into a new NRGBA buffer anchored at the origin.
func ToNRGBA(img nImage.Image) *nImage.NRGBA {
	if img == nil {
		return nImage.NewNRGBA(nImage.Rect(0, 0, 0, 0))
	}
	b := img.Bounds()
	dst := nImage.NewNRGBA(nImage.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

type ImageType string

const (
	BMP  ImageType = "bmp"
	GIF  ImageType = "gif"
	JPEG ImageType = "jpeg"
	PNG  ImageType = "png"
	AVI  ImageType = "avi"
)

func (t ImageType) Ext() string {
	if t == JPEG {
		return ".jpg"
	}
	return "." + string(t)
}
