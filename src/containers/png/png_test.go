package png

import (
	"image/color"
	nPng "image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local) }
	t.Cleanup(func() { now = time.Now })
}

func TestSaveAtlas(t *testing.T) {
	fixedNow(t)
	dir := t.TempDir()

	file, err := SaveAtlas(imaging.New(3, 2, color.Black), dir, "atlas")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "atlas_20240102_030405.png"), file)

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := nPng.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
}

func TestSaveAtlasEmpty(t *testing.T) {
	_, err := SaveAtlas(nil, t.TempDir(), "atlas")
	assert.ErrorIs(t, err, image.ErrEmptyInput)
}

func TestSaveSequence(t *testing.T) {
	fixedNow(t)
	dir := t.TempDir()
	frames := []image.Frame{
		image.NewFrame("", "", imaging.New(2, 2, color.Black)),
		image.NewFrame("", "", imaging.New(2, 2, color.White)),
		{},
	}

	out, err := SaveSequence(frames, dir, "sequence")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sequence_20240102_030405"), out)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"1.png", "2.png"}, names)

	data, err := os.ReadFile(filepath.Join(out, "1.png"))
	require.NoError(t, err)
	assert.True(t, Test(data))
}

func TestSaveSequenceEmpty(t *testing.T) {
	_, err := SaveSequence(nil, t.TempDir(), "sequence")
	var encErr *image.EncodeError
	assert.ErrorAs(t, err, &encErr)
	assert.ErrorIs(t, err, image.ErrEmptyInput)
}

func TestSaveUnwritable(t *testing.T) {
	err := Save(imaging.New(1, 1, color.Black), filepath.Join(t.TempDir(), "missing", "x.png"))
	var encErr *image.EncodeError
	assert.ErrorAs(t, err, &encErr)
}
