package containers

import (
	"bytes"
	"fmt"
	nImage "image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/seventv/AtlasProcessor/src/containers/avi"
	"github.com/seventv/AtlasProcessor/src/containers/bmp"
	"github.com/seventv/AtlasProcessor/src/containers/gif"
	"github.com/seventv/AtlasProcessor/src/containers/jpeg"
	"github.com/seventv/AtlasProcessor/src/containers/png"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
)

var ErrUnsupportedInput = fmt.Errorf("format is not accepted as input")

// Extensions lists the file extensions accepted as input.
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

func ToType(data []byte) (image.ImageType, error) {
	if avi.Test(data) {
		return image.AVI, nil
	} else if gif.Test(data) {
		return image.GIF, nil
	} else if jpeg.Test(data) {
		return image.JPEG, nil
	} else if png.Test(data) {
		return image.PNG, nil
	} else if bmp.Test(data) { // two byte magic, keep it last
		return image.BMP, nil
	}

	return "", image.ErrUnknownFormat
}

// Supported reports whether path has an accepted input extension.
func Supported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// ListDir returns the supported files directly inside dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	return files, nil
}

// Decode reads the first image stored in path.
func Decode(path string) (image.Frame, error) {
	frames, err := decode(path, false)
	if err != nil {
		return image.Frame{}, err
	}
	return frames[0], nil
}

// DecodeAll reads every frame stored in path. Still images give one frame,
// animated GIFs one composited frame per GIF frame.
func DecodeAll(path string) ([]image.Frame, error) {
	return decode(path, true)
}

func decode(path string, all bool) ([]image.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &image.DecodeError{Path: path, Err: err}
	}

	imgType, err := ToType(data)
	if err != nil {
		return nil, &image.DecodeError{Path: path, Err: err}
	}

	name := filepath.Base(path)
	l := logrus.WithField("file", path).WithField("type", imgType)

	switch imgType {
	case image.GIF:
		anim, err := gif.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &image.DecodeError{Path: path, Err: err}
		}
		if !all || len(anim.Frames) == 1 {
			l.Debug("decoded")
			f := image.NewFrame(path, name, anim.Frames[0])
			f.Delay = anim.Delays[0]
			return []image.Frame{f}, nil
		}

		frames := make([]image.Frame, len(anim.Frames))
		for i, f := range anim.Frames {
			frames[i] = image.Frame{
				Path:   fmt.Sprintf("%s#%d", path, i),
				Name:   fmt.Sprintf("%s #%d", name, i+1),
				Pixels: f,
				Delay:  anim.Delays[i],
			}
		}
		l.WithField("frames", len(frames)).Debug("decoded")
		return frames, nil
	case image.PNG, image.JPEG, image.BMP:
		img, _, err := nImage.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &image.DecodeError{Path: path, Err: err}
		}
		l.Debug("decoded")
		return []image.Frame{image.NewFrame(path, name, img)}, nil
	default:
		return nil, &image.DecodeError{Path: path, Err: ErrUnsupportedInput}
	}
}
