package png

import (
	"fmt"
	nImage "image"
	nPng "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/sirupsen/logrus"
)

const TimestampLayout = "20060102_150405"

var now = time.Now

var encoder = nPng.Encoder{CompressionLevel: nPng.BestCompression}

// Save writes img to path, replacing any existing file.
func Save(img nImage.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &image.EncodeError{Path: path, Err: err}
	}

	if err := encoder.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return &image.EncodeError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return &image.EncodeError{Path: path, Err: err}
	}

	return nil
}

// SaveAtlas writes img as <prefix>_<timestamp>.png inside dir.
func SaveAtlas(img nImage.Image, dir, prefix string) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", &image.EncodeError{Err: image.ErrEmptyInput}
	}

	file := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, now().Format(TimestampLayout)))
	if err := Save(img, file); err != nil {
		return "", err
	}

	logrus.WithField("file", file).Info("atlas saved")
	return file, nil
}

// SaveSequence writes each frame as 1.png, 2.png, ... into a new
// <prefix>_<timestamp> directory inside dir and returns that directory.
func SaveSequence(frames []image.Frame, dir, prefix string) (string, error) {
	if len(frames) == 0 {
		return "", &image.EncodeError{Err: image.ErrEmptyInput}
	}

	out := filepath.Join(dir, fmt.Sprintf("%s_%s", prefix, now().Format(TimestampLayout)))
	if err := os.MkdirAll(out, 0755); err != nil {
		return "", &image.EncodeError{Path: out, Err: err}
	}

	var err error
	for i, f := range frames {
		if f.Empty() {
			logrus.WithField("index", i).Debug("skipping empty frame")
			continue
		}
		err = multierror.Append(err, Save(f.Pixels, filepath.Join(out, fmt.Sprintf("%d.png", i+1)))).ErrorOrNil()
	}
	if err != nil {
		return out, err
	}

	logrus.WithField("dir", out).WithField("frames", len(frames)).Info("sequence saved")
	return out, nil
}
