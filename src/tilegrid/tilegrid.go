package tilegrid

import (
	"fmt"
	"image"
)

var ErrInvalidSpec = fmt.Errorf("rows and columns must be at least 1")

// Spec is the rows x columns partition shared by every conversion.
type Spec struct {
	Rows    int `json:"rows" mapstructure:"rows"`
	Columns int `json:"columns" mapstructure:"columns"`
}

var Default = Spec{Rows: 1, Columns: 1}

func New(rows, columns int) (Spec, error) {
	s := Spec{Rows: rows, Columns: columns}
	if !s.Valid() {
		return Default, ErrInvalidSpec
	}
	return s, nil
}

func (s Spec) Valid() bool {
	return s.Rows >= 1 && s.Columns >= 1
}

func (s Spec) Cells() int {
	if !s.Valid() {
		return 0
	}
	return s.Rows * s.Columns
}

func (s Spec) Index(row, col int) int {
	return row*s.Columns + col
}

func (s Spec) Position(index int) (row, col int) {
	return index / s.Columns, index % s.Columns
}

// Overlay reports whether grid lines carry any information for this spec.
func (s Spec) Overlay() bool {
	return !(s.Rows <= 1 && s.Columns <= 1)
}

func (s Spec) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Columns)
}

// CellSize is the nominal cell of an atlas of the given size.
func (s Spec) CellSize(width, height int) (cellWidth, cellHeight int) {
	if !s.Valid() {
		return 0, 0
	}
	return width / s.Columns, height / s.Rows
}

// Split divides a width x height atlas into Rows*Columns rectangles in
// row-major order. The last column and row absorb the pixels left over by the
// integer division so no source pixel is dropped.
func (s Spec) Split(width, height int) []image.Rectangle {
	if !s.Valid() {
		return nil
	}

	cw, ch := s.CellSize(width, height)
	rects := make([]image.Rectangle, 0, s.Cells())
	for i := 0; i < s.Cells(); i++ {
		row, col := s.Position(i)
		x, y := col*cw, row*ch
		// the last row absorbs the remainder the same way the last column does
		w := span(cw, width-x, col == s.Columns-1)
		h := span(ch, height-y, row == s.Rows-1)
		rects = append(rects, image.Rect(x, y, x+w, y+h))
	}

	return rects
}

func span(cell, remaining int, last bool) int {
	if remaining < 0 {
		return 0
	}
	if last {
		return remaining
	}
	return min(cell, remaining)
}

// Layout describes the canvas an atlas is composed on.
type Layout struct {
	Spec       Spec
	CellWidth  int
	CellHeight int
	Used       int
}

func (l Layout) Width() int {
	return l.Spec.Columns * l.CellWidth
}

func (l Layout) Height() int {
	return l.Spec.Rows * l.CellHeight
}

func (l Layout) Empty() bool {
	return l.Used == 0 || l.Width() == 0 || l.Height() == 0
}

// Cell returns the destination rectangle of the i-th used image.
func (l Layout) Cell(i int) image.Rectangle {
	row, col := l.Spec.Position(i)
	x, y := col*l.CellWidth, row*l.CellHeight
	return image.Rect(x, y, x+l.CellWidth, y+l.CellHeight)
}

// Compose computes the atlas layout for images of the given sizes. Only the
// first Rows*Columns sizes take part and every cell takes the largest width
// and height among them.
func (s Spec) Compose(sizes []image.Point) Layout {
	l := Layout{Spec: s}
	if !s.Valid() {
		return l
	}

	l.Used = min(len(sizes), s.Cells())
	for _, sz := range sizes[:l.Used] {
		l.CellWidth = max(l.CellWidth, sz.X)
		l.CellHeight = max(l.CellHeight, sz.Y)
	}

	return l
}
