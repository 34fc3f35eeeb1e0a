package gif

import (
	"bytes"
	"context"
	nImage "image"
	"image/color"
	nGif "image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

func solid(w, h int, c color.Color) image.Frame {
	return image.NewFrame("", "", imaging.New(w, h, c))
}

func TestDelay(t *testing.T) {
	for _, tc := range []struct{ fps, delay int }{
		{30, 3},
		{100, 1},
		{120, 1},
		{1, 100},
		{24, 4},
	} {
		assert.Equal(t, tc.delay, Delay(tc.fps), "fps %d", tc.fps)
	}
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	assert.Equal(t, "sequence_20240309_140507.gif", FileName("sequence", ts))
}

func TestEncodeEmpty(t *testing.T) {
	dir := t.TempDir()
	_, err := Encode(context.Background(), nil, Options{FrameRate: 30, Dir: dir, Prefix: "sequence"})

	var encErr *image.EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.ErrorIs(t, err, image.ErrEmptyInput)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEncodeRejectsFrameRate(t *testing.T) {
	frames := []image.Frame{solid(2, 2, red)}
	for _, fps := range []int{0, -1, 121, 150} {
		_, err := Encode(context.Background(), frames, Options{FrameRate: fps, Dir: t.TempDir()})
		assert.ErrorIs(t, err, ErrFrameRate)
	}
}

func TestEncodeMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	_, err := Encode(context.Background(), []image.Frame{solid(2, 2, red)}, Options{FrameRate: 30, Dir: dir})

	var encErr *image.EncodeError
	assert.ErrorAs(t, err, &encErr)
}

func TestEncodeRoundTrip(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local) }
	defer func() { now = time.Now }()

	dir := t.TempDir()
	frames := []image.Frame{solid(4, 4, red), solid(4, 4, red), solid(4, 4, blue)}

	file, err := Encode(context.Background(), frames, Options{
		FrameRate: 30,
		Dir:       dir,
		Prefix:    "atlas",
		Optimize:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "atlas_20240102_030405.gif"), file)

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	g, err := nGif.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, g.Image, 3)
	assert.Equal(t, []int{3, 3, 3}, g.Delay)
	assert.Equal(t, 0, g.LoopCount)
	assert.Equal(t, 4, g.Config.Width)
	// unchanged frame shrinks to a single transparent pixel
	assert.Equal(t, 1, g.Image[1].Bounds().Dx())

	anim, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, anim.Frames, 3)
	assert.Equal(t, red, anim.Frames[1].NRGBAAt(3, 3))
	assert.Equal(t, blue, anim.Frames[2].NRGBAAt(0, 0))
}

func TestBuildFlattensOntoLargestCanvas(t *testing.T) {
	frames := []image.Frame{solid(2, 3, red), solid(5, 1, blue)}
	g, err := Build(frames, Options{FrameRate: 10})
	require.NoError(t, err)

	assert.Equal(t, 5, g.Config.Width)
	assert.Equal(t, 3, g.Config.Height)
	assert.Equal(t, []int{10, 10}, g.Delay)
	for _, img := range g.Image {
		assert.Equal(t, nImage.Rect(0, 0, 5, 3), img.Bounds())
	}

	// pixels outside the smaller frame are white
	c := g.Image[0].At(4, 2)
	assert.Equal(t, color.NRGBAModel.Convert(color.White), color.NRGBAModel.Convert(c))
}

func TestBuildKeepsFrameDelays(t *testing.T) {
	frames := []image.Frame{solid(2, 2, red), solid(2, 2, blue), solid(2, 2, red), solid(2, 2, blue)}
	g, err := Build(frames, Options{FrameRate: 30, Delays: []int{50, 0, 200}})
	require.NoError(t, err)
	assert.Equal(t, []int{50, 3, 200, 3}, g.Delay)
}

func TestBuildEmptyCanvas(t *testing.T) {
	_, err := Build([]image.Frame{{}}, Options{FrameRate: 30})
	assert.ErrorIs(t, err, ErrEmptyCanvas)
}

func TestDiff(t *testing.T) {
	pal := color.Palette{red, blue, color.RGBA{}}
	prev := nImage.NewPaletted(nImage.Rect(0, 0, 4, 4), pal)
	cur := nImage.NewPaletted(nImage.Rect(0, 0, 4, 4), pal)
	cur.SetColorIndex(1, 2, 1)
	cur.SetColorIndex(2, 1, 1)

	out := diff(prev, cur, 2)
	assert.Equal(t, nImage.Rect(1, 1, 3, 3), out.Rect)
	assert.Equal(t, uint8(1), out.ColorIndexAt(1, 2))
	assert.Equal(t, uint8(2), out.ColorIndexAt(1, 1))
}

func TestDecodeDisposalBackground(t *testing.T) {
	pal := color.Palette{red, blue, color.RGBA{}}
	first := nImage.NewPaletted(nImage.Rect(0, 0, 2, 2), pal)
	second := nImage.NewPaletted(nImage.Rect(1, 1, 2, 2), pal)
	second.SetColorIndex(1, 1, 1)

	var buf bytes.Buffer
	require.NoError(t, nGif.EncodeAll(&buf, &nGif.GIF{
		Image:    []*nImage.Paletted{first, second},
		Delay:    []int{5, 5},
		Disposal: []byte{nGif.DisposalBackground, nGif.DisposalNone},
		Config:   nImage.Config{ColorModel: pal, Width: 2, Height: 2},
	}))

	anim, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, anim.Frames, 2)
	assert.Equal(t, []int{5, 5}, anim.Delays)
	assert.Equal(t, red, anim.Frames[0].NRGBAAt(0, 0))
	assert.Equal(t, blue, anim.Frames[1].NRGBAAt(1, 1))
	// the first frame was disposed to the background before the second
	assert.Equal(t, uint8(0), anim.Frames[1].NRGBAAt(0, 0).A)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("GIF89a")))
	assert.Error(t, err)
}

func TestMagic(t *testing.T) {
	assert.True(t, Test([]byte("GIF89a......")))
	assert.True(t, Test([]byte("GIF87a")))
	assert.False(t, Test([]byte("GIF8")))
	assert.False(t, Test([]byte("\x89PNG\r\n\x1a\n")))
}
