package tiles

import (
	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/surface"
	"github.com/gogpu/tilerender/vertex"
)

// DefaultCellSize is the size of one grid cell.
var DefaultCellSize = tilerender.Sz(512, 256)

// DefaultParallaxRatio divides the camera offset of the moving cell.
const DefaultParallaxRatio = 2

// Option configures a Cache.
type Option func(*options)

type options struct {
	cellSize tilerender.Size
	ratio    int
}

// WithCellSize sets the grid cell size. Non-positive sizes are ignored.
func WithCellSize(s tilerender.Size) Option {
	return func(o *options) {
		if s.Width > 0 && s.Height > 0 {
			o.cellSize = s
		}
	}
}

// WithParallaxRatio sets the moving cell parallax ratio. Values < 1 are
// ignored.
func WithParallaxRatio(r int) Option {
	return func(o *options) {
		if r >= 1 {
			o.ratio = r
		}
	}
}

// Stats counts cache activity since creation.
type Stats struct {
	CellBuilds   int
	CellDraws    int
	MovingBuilds int
	MovingDraws  int
	UpdaterRuns  int
	Rejected     int
}

// cell is a compiled batch. A nil batch means not built.
type cell struct {
	batch   *vertex.Batch
	updater Updater
}

func (c *cell) built() bool { return c.batch != nil }

func (c *cell) reset() {
	c.batch = nil
	c.updater = nil
}

// Cache compiles the tiles of one map layer into per-cell batches.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	m     Map
	layer int
	opts  options

	pending []TileInfo
	grid    *Grid[TileInfo]
	cells   []cell
	moving  []TileInfo
	movCell cell
	built   bool

	stats Stats
}

// New creates a cache for layer of m.
func New(m Map, layer int, opts ...Option) *Cache {
	o := options{cellSize: DefaultCellSize, ratio: DefaultParallaxRatio}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache{
		m:     m,
		layer: layer,
		opts:  o,
		grid:  NewGrid[TileInfo](m.Size(), o.cellSize),
	}
}

// Layer returns the layer index.
func (c *Cache) Layer() int { return c.layer }

// Grid returns the cell partition. It is empty until Build.
func (c *Cache) Grid() *Grid[TileInfo] { return c.grid }

// Built reports whether Build has been called.
func (c *Cache) Built() bool { return c.built }

// Stats returns activity counters.
func (c *Cache) Stats() Stats { return c.stats }

// AddTile queues a tile for Build. It panics after Build or when the
// tile belongs to another layer.
func (c *Cache) AddTile(t TileInfo) {
	if c.built {
		tilerender.Fatal("tiles: tile regions are already built", "layer", c.layer)
	}
	if t.Layer != c.layer {
		tilerender.Fatal("tiles: wrong layer for tile", "layer", c.layer, "tile_layer", t.Layer)
	}
	c.pending = append(c.pending, t)
}

// Build partitions the queued tiles and returns the ones that cannot be
// drawn: tiles without a pattern or with an empty box, and static tiles
// lying outside the map. It panics if called twice.
func (c *Cache) Build() []TileInfo {
	if c.built {
		tilerender.Fatal("tiles: tile regions are already built", "layer", c.layer)
	}
	var rejected []TileInfo
	for _, t := range c.pending {
		switch {
		case t.Pattern == nil || t.Box.Empty():
			rejected = append(rejected, t)
		case t.Pattern.DrawnAtItsPosition():
			if !c.grid.Add(t, t.Box) {
				rejected = append(rejected, t)
			}
		default:
			c.moving = append(c.moving, t)
		}
	}
	c.pending = nil
	c.cells = make([]cell, c.grid.NumCells())
	c.built = true
	c.stats.Rejected += len(rejected)

	log := tilerender.Logger()
	log.Debug("tiles: layer built", "layer", c.layer,
		"cells", c.grid.NumCells(), "moving", len(c.moving))
	if len(rejected) > 0 {
		log.Warn("tiles: rejected tiles", "layer", c.layer, "count", len(rejected))
	}
	return rejected
}

// NotifyTilesetChanged drops every compiled batch. Cells are rebuilt the
// next time they are visible.
func (c *Cache) NotifyTilesetChanged() {
	for i := range c.cells {
		c.cells[i].reset()
	}
	c.movCell.reset()
	tilerender.Logger().Debug("tiles: tileset changed, cells invalidated", "layer", c.layer)
}

// CellBuilt reports whether the cell at index currently has a batch.
func (c *Cache) CellBuilt(index int) bool {
	return index >= 0 && index < len(c.cells) && c.cells[index].built()
}

// DrawOnMap draws the visible cells onto the camera surface: the moving
// cell first, then every static cell overlapping the camera, building
// cells on first use. Without a camera nothing is drawn.
func (c *Cache) DrawOnMap() {
	if !c.built {
		tilerender.Fatal("tiles: draw before build", "layer", c.layer)
	}
	cam := c.m.Camera()
	if cam == nil {
		return
	}
	box := cam.BoundingBox()
	cs := c.grid.CellSize()

	row1 := max(box.Y/cs.Height, 0)
	row2 := min((box.Y+box.Height)/cs.Height, c.grid.NumRows()-1)
	col1 := max(box.X/cs.Width, 0)
	col2 := min((box.X+box.Width)/cs.Width, c.grid.NumColumns()-1)
	if row1 > row2 || col1 > col2 {
		return
	}

	dst := c.m.CameraSurface()
	tiles := c.m.Tileset().TilesImage()
	camXY := box.TopLeft()

	c.drawMoving(dst, tiles, camXY)

	clip := tilerender.RectAt(tilerender.Point{}, cs)
	for i := row1; i <= row2; i++ {
		for j := col1; j <= col2; j++ {
			idx := i*c.grid.NumColumns() + j
			cl := &c.cells[idx]
			if !cl.built() {
				c.buildCell(idx)
			}
			if cl.updater != nil {
				cl.updater.Update(camXY, clip)
				c.stats.UpdaterRuns++
			}
			cellXY := tilerender.Pt(j*cs.Width, i*cs.Height)
			dst.DrawBatch(cl.batch, cellXY.Sub(camXY), tiles)
			c.stats.CellDraws++
		}
	}
}

func (c *Cache) drawMoving(dst, tiles *surface.Surface, camXY tilerender.Point) {
	if len(c.moving) == 0 {
		return
	}
	if !c.movCell.built() {
		c.buildMovingCell()
	}
	if c.movCell.updater != nil {
		c.movCell.updater.Update(camXY.Neg(), tilerender.Rect{})
		c.stats.UpdaterRuns++
	}
	dst.DrawBatch(c.movCell.batch, camXY.Neg().Div(c.opts.ratio), tiles)
	c.stats.MovingDraws++
}

func (c *Cache) buildCell(index int) {
	if index < 0 || index >= len(c.cells) {
		tilerender.Fatal("tiles: wrong cell index", "layer", c.layer, "index", index)
	}
	cl := &c.cells[index]
	if cl.built() {
		tilerender.Fatal("tiles: cell is already built", "layer", c.layer, "index", index)
	}

	origin := c.grid.CellRect(index).TopLeft()
	clip := tilerender.RectAt(tilerender.Point{}, c.grid.CellSize())
	elems := c.grid.Elements(index)
	cl.batch, cl.updater = c.fill(elems, origin, clip)
	c.stats.CellBuilds++
	tilerender.Logger().Debug("tiles: cell built", "layer", c.layer, "index", index,
		"tiles", len(elems), "vertices", cl.batch.Len())
}

func (c *Cache) buildMovingCell() {
	clip := tilerender.RectAt(tilerender.Point{}, c.m.Size())
	c.movCell.batch, c.movCell.updater = c.fill(c.moving, tilerender.Point{}, clip)
	c.stats.MovingBuilds++
	tilerender.Logger().Debug("tiles: moving cell built", "layer", c.layer,
		"tiles", len(c.moving), "vertices", c.movCell.batch.Len())
}

// fill appends the geometry of tiles, positioned relative to origin, into
// a new batch and collects their updaters.
func (c *Cache) fill(tiles []TileInfo, origin tilerender.Point, clip tilerender.Rect) (*vertex.Batch, Updater) {
	b := vertex.NewBatch(len(tiles) * vertex.QuadVertices)
	ts := c.m.Tileset()
	var ups MultiUpdater
	for _, t := range tiles {
		dst := t.Box.Add(origin.Neg())
		if u := t.Pattern.FillBatch(b, dst, ts, clip); u != nil {
			ups = append(ups, u)
		}
	}
	if len(ups) == 0 {
		return b, nil
	}
	return b, ups
}
