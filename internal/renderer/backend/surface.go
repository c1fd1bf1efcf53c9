package backend

import (
	"unicode/utf8"

	"github.com/dshills/pad/internal/renderer/core"
)

// Surface is an off-screen grid of cells that is drawn once and then
// blitted to a backend.
type Surface struct {
	width, height int
	cells         [][]core.Cell
}

// NewSurface creates a transparent surface of the given size.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSurface
	}
	s := &Surface{width: width, height: height}
	s.cells = make([][]core.Cell, height)
	for y := range s.cells {
		s.cells[y] = make([]core.Cell, width)
		for x := range s.cells[y] {
			s.cells[y][x] = core.EmptyCell()
		}
	}
	return s, nil
}

// RenderText rasterizes a single line of text into a new surface, one rune
// per cell. Wide runes take two cells; zero-width runes are dropped.
func RenderText(text string, style core.Style) (*Surface, error) {
	return RenderTextAdvance(text, style, 1)
}

// RenderTextAdvance is RenderText with each column stretched to advance
// cells. Gaps between glyphs stay transparent.
func RenderTextAdvance(text string, style core.Style, advance int) (*Surface, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidText
	}
	if advance < 1 {
		advance = 1
	}
	s, err := NewSurface(max(core.StringWidth(text)*advance, 1), 1)
	if err != nil {
		return nil, err
	}
	col := 0
	for _, r := range text {
		w := core.RuneWidth(r)
		if w == 0 {
			continue
		}
		x := col * advance
		s.SetCell(x, 0, core.NewStyledCell(r, style))
		if w == 2 {
			s.SetCell(x+1, 0, core.ContinuationCell())
		}
		col += w
	}
	return s, nil
}

// Size returns the surface dimensions.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// SetCell sets a cell. Positions outside the surface are ignored.
func (s *Surface) SetCell(x, y int, cell core.Cell) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y][x] = cell
}

// Cell returns the cell at (x, y), or an empty cell outside the surface.
func (s *Surface) Cell(x, y int) core.Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return core.EmptyCell()
	}
	return s.cells[y][x]
}
