package tiles

import "github.com/gogpu/tilerender"

// Grid partitions a rectangle of the given size into fixed-size cells and
// stores elements in every cell their box overlaps.
type Grid[T any] struct {
	size     tilerender.Size
	cellSize tilerender.Size
	rows     int
	columns  int
	cells    [][]T
}

// NewGrid creates an empty grid covering size with cells of cellSize.
// Partial cells at the right and bottom edges count as full cells.
func NewGrid[T any](size, cellSize tilerender.Size) *Grid[T] {
	if cellSize.Width <= 0 || cellSize.Height <= 0 {
		tilerender.Fatal("tiles: grid cell size must be positive", "cell_size", cellSize)
	}
	g := &Grid[T]{size: size, cellSize: cellSize}
	if size.Width > 0 && size.Height > 0 {
		g.rows = (size.Height + cellSize.Height - 1) / cellSize.Height
		g.columns = (size.Width + cellSize.Width - 1) / cellSize.Width
	}
	g.cells = make([][]T, g.rows*g.columns)
	return g
}

// Size returns the covered size.
func (g *Grid[T]) Size() tilerender.Size { return g.size }

// CellSize returns the size of one cell.
func (g *Grid[T]) CellSize() tilerender.Size { return g.cellSize }

// NumRows returns the number of cell rows.
func (g *Grid[T]) NumRows() int { return g.rows }

// NumColumns returns the number of cell columns.
func (g *Grid[T]) NumColumns() int { return g.columns }

// NumCells returns NumRows * NumColumns.
func (g *Grid[T]) NumCells() int { return len(g.cells) }

// CellRect returns the rectangle of the cell at index.
func (g *Grid[T]) CellRect(index int) tilerender.Rect {
	row, col := index/g.columns, index%g.columns
	return tilerender.R(col*g.cellSize.Width, row*g.cellSize.Height, g.cellSize.Width, g.cellSize.Height)
}

// Add stores elem in every cell overlapping box and reports whether there
// was at least one.
func (g *Grid[T]) Add(elem T, box tilerender.Rect) bool {
	box = box.Intersect(tilerender.RectAt(tilerender.Point{}, g.size))
	if box.Empty() {
		return false
	}
	row1, row2 := box.Y/g.cellSize.Height, (box.Bottom()-1)/g.cellSize.Height
	col1, col2 := box.X/g.cellSize.Width, (box.Right()-1)/g.cellSize.Width
	for i := row1; i <= row2; i++ {
		for j := col1; j <= col2; j++ {
			idx := i*g.columns + j
			g.cells[idx] = append(g.cells[idx], elem)
		}
	}
	return true
}

// Elements returns the elements of the cell at index.
func (g *Grid[T]) Elements(index int) []T {
	return g.cells[index]
}

// Clear removes every element and keeps the layout.
func (g *Grid[T]) Clear() {
	clear(g.cells)
}
