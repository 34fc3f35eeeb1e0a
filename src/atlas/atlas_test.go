package atlas

import (
	nImage "image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/seventv/AtlasProcessor/src/image"
	"github.com/seventv/AtlasProcessor/src/tilegrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	green = color.NRGBA{G: 0xff, A: 0xff}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func solid(w, h int, c color.Color) image.Frame {
	return image.NewFrame("", "", imaging.New(w, h, c))
}

func TestSequenceToAtlas(t *testing.T) {
	spec := tilegrid.Spec{Rows: 2, Columns: 2}
	frames := []image.Frame{solid(10, 10, red), solid(10, 10, green), solid(5, 5, red)}

	atlas, err := SequenceToAtlas(frames, spec, nil)
	require.NoError(t, err)
	assert.Equal(t, nImage.Rect(0, 0, 20, 20), atlas.Rect)

	assert.Equal(t, red, atlas.NRGBAAt(5, 5))
	assert.Equal(t, green, atlas.NRGBAAt(15, 5))
	// smaller frame is scaled up to fill its cell
	assert.Equal(t, red, atlas.NRGBAAt(9, 18))
	// unused cell keeps the background
	assert.Equal(t, white, atlas.NRGBAAt(15, 15))
}

func TestSequenceToAtlasUsesFirstCells(t *testing.T) {
	spec := tilegrid.Spec{Rows: 1, Columns: 2}
	frames := []image.Frame{solid(4, 4, red), solid(4, 4, red), solid(50, 50, green)}

	atlas, err := SequenceToAtlas(frames, spec, color.Black)
	require.NoError(t, err)
	assert.Equal(t, nImage.Rect(0, 0, 8, 4), atlas.Rect)
}

func TestSequenceToAtlasErrors(t *testing.T) {
	_, err := SequenceToAtlas(nil, tilegrid.Default, nil)
	assert.ErrorIs(t, err, image.ErrEmptyInput)

	_, err = SequenceToAtlas([]image.Frame{solid(1, 1, red)}, tilegrid.Spec{}, nil)
	assert.ErrorIs(t, err, tilegrid.ErrInvalidSpec)

	_, err = SequenceToAtlas([]image.Frame{{}}, tilegrid.Default, nil)
	assert.ErrorIs(t, err, image.ErrEmptyInput)
}

func TestAtlasToSequence(t *testing.T) {
	spec := tilegrid.Spec{Rows: 2, Columns: 3}
	atlas := imaging.New(121, 121, red)
	atlas.SetNRGBA(120, 120, green)

	frames, err := AtlasToSequence(atlas, spec)
	require.NoError(t, err)
	require.Len(t, frames, 6)

	assert.Equal(t, 40, frames[0].Width())
	assert.Equal(t, 60, frames[0].Height())
	assert.Equal(t, 41, frames[5].Width())
	assert.Equal(t, 61, frames[5].Height())
	assert.Equal(t, green, frames[5].Pixels.NRGBAAt(40, 60))
	assert.Equal(t, "cell 1", frames[0].Name)
	assert.Empty(t, frames[0].Path)

	// crops own their pixels
	frames[0].Pixels.SetNRGBA(0, 0, green)
	assert.Equal(t, red, atlas.NRGBAAt(0, 0))
}

func TestAtlasToSequenceTinyAtlas(t *testing.T) {
	frames, err := AtlasToSequence(imaging.New(3, 2, red), tilegrid.Spec{Rows: 1, Columns: 5})
	require.NoError(t, err)
	require.Len(t, frames, 5)
	assert.True(t, frames[0].Empty())
	assert.Equal(t, 3, frames[4].Width())
}

func TestAtlasToSequenceErrors(t *testing.T) {
	_, err := AtlasToSequence(nil, tilegrid.Default)
	assert.ErrorIs(t, err, image.ErrEmptyInput)

	_, err = AtlasToSequence(imaging.New(2, 2, red), tilegrid.Spec{Rows: 0, Columns: 2})
	assert.ErrorIs(t, err, tilegrid.ErrInvalidSpec)
}

func TestRoundTripCount(t *testing.T) {
	for _, spec := range []tilegrid.Spec{{Rows: 1, Columns: 1}, {Rows: 2, Columns: 3}, {Rows: 6, Columns: 6}} {
		frames := []image.Frame{solid(7, 9, red), solid(3, 3, green)}

		atlas, err := SequenceToAtlas(frames, spec, nil)
		require.NoError(t, err)

		out, err := AtlasToSequence(atlas, spec)
		require.NoError(t, err)
		assert.Len(t, out, spec.Cells(), spec.String())
		assert.Equal(t, 7, out[0].Width(), spec.String())
		assert.Equal(t, 9, out[0].Height(), spec.String())
	}
}

func TestPreview(t *testing.T) {
	spec := tilegrid.Spec{Rows: 2, Columns: 3}
	sheet, err := Preview([]image.Frame{solid(10, 10, red), solid(30, 10, green)}, spec)
	require.NoError(t, err)

	assert.Equal(t, nImage.Rect(0, 0, 300, 200), sheet.Rect)
	assert.Equal(t, BorderColor, sheet.NRGBAAt(0, 50))
	assert.Equal(t, red, sheet.NRGBAAt(50, 80))
	assert.Equal(t, green, sheet.NRGBAAt(150, 80))
	assert.Equal(t, white, sheet.NRGBAAt(250, 150))

	_, err = Preview(nil, spec)
	assert.ErrorIs(t, err, image.ErrEmptyInput)
}

func TestOverlay(t *testing.T) {
	atlas := imaging.New(30, 20, white)

	same := Overlay(atlas, tilegrid.Default)
	assert.Same(t, atlas, same)

	out := Overlay(atlas, tilegrid.Spec{Rows: 2, Columns: 3})
	assert.NotSame(t, atlas, out)
	assert.Equal(t, GridColor, out.NRGBAAt(0, 10))
	assert.Equal(t, white, out.NRGBAAt(5, 10))
	assert.Equal(t, GridColor, out.NRGBAAt(10, 0))
	assert.Equal(t, GridColor, out.NRGBAAt(20, 14))
	assert.Equal(t, white, atlas.NRGBAAt(0, 10))
}
