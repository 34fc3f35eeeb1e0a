package avi

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) }
	defer func() { now = time.Now }()

	dir := t.TempDir()
	frames := []image.Frame{
		image.NewFrame("", "", imaging.New(8, 4, color.Black)),
		image.NewFrame("", "", imaging.New(4, 6, color.White)),
	}

	file, err := Encode(frames, 30, dir, "sequence")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sequence_20240506_070809.avi"), file)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, Test(data))
}

func TestEncodeEmpty(t *testing.T) {
	dir := t.TempDir()
	_, err := Encode(nil, 30, dir, "sequence")
	assert.ErrorIs(t, err, image.ErrEmptyInput)

	_, err = Encode([]image.Frame{{}}, 30, dir, "sequence")
	assert.ErrorIs(t, err, image.ErrEmptyInput)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEncodeFrameRate(t *testing.T) {
	frames := []image.Frame{image.NewFrame("", "", imaging.New(2, 2, color.Black))}
	_, err := Encode(frames, 0, t.TempDir(), "x")
	assert.ErrorIs(t, err, ErrFrameRate)
}

func TestBounds(t *testing.T) {
	frames := []image.Frame{
		image.NewFrame("", "", imaging.New(8, 4, color.Black)),
		image.NewFrame("", "", imaging.New(4, 6, color.Black)),
	}
	assert.Equal(t, 8, Bounds(frames).Dx())
	assert.Equal(t, 6, Bounds(frames).Dy())
}
