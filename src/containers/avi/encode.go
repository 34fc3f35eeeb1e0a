package avi

import (
	"bytes"
	"fmt"
	nImage "image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/icza/mjpeg"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/sirupsen/logrus"
)

const (
	TimestampLayout = "20060102_150405"
	Quality         = 90
)

var ErrFrameRate = fmt.Errorf("frame rate must be positive")

var now = time.Now

// Encode writes frames as a Motion-JPEG AVI named <prefix>_<timestamp>.avi
// inside dir. Frames are centred on a white canvas the size of the largest.
func Encode(frames []image.Frame, frameRate int, dir, prefix string) (string, error) {
	if len(frames) == 0 {
		return "", &image.EncodeError{Err: image.ErrEmptyInput}
	}
	if frameRate <= 0 {
		return "", &image.EncodeError{Err: ErrFrameRate}
	}

	b := Bounds(frames)
	if b.Empty() {
		return "", &image.EncodeError{Err: image.ErrEmptyInput}
	}
	w, h := b.Dx(), b.Dy()

	file := filepath.Join(dir, fmt.Sprintf("%s_%s.avi", prefix, now().Format(TimestampLayout)))
	aw, err := mjpeg.New(file, int32(w), int32(h), int32(frameRate))
	if err != nil {
		return "", &image.EncodeError{Path: file, Err: err}
	}

	fail := func(err error) (string, error) {
		_ = aw.Close()
		_ = os.Remove(file)
		return "", &image.EncodeError{Path: file, Err: err}
	}

	buf := &bytes.Buffer{}
	for _, f := range frames {
		canvas := imaging.New(w, h, color.White)
		if !f.Empty() {
			canvas = imaging.OverlayCenter(canvas, f.Pixels, 1)
		}

		buf.Reset()
		if err := jpeg.Encode(buf, canvas, &jpeg.Options{Quality: Quality}); err != nil {
			return fail(err)
		}
		if err := aw.AddFrame(buf.Bytes()); err != nil {
			return fail(err)
		}
	}

	if err := aw.Close(); err != nil {
		_ = os.Remove(file)
		return "", &image.EncodeError{Path: file, Err: err}
	}

	logrus.WithField("file", file).WithField("frames", len(frames)).Info("avi written")
	return file, nil
}

// Bounds is the canvas Encode would use for frames.
func Bounds(frames []image.Frame) nImage.Rectangle {
	w, h := 0, 0
	for _, f := range frames {
		w = max(w, f.Width())
		h = max(h, f.Height())
	}
	return nImage.Rect(0, 0, w, h)
}
