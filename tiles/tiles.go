// Package tiles caches the static tiles of a map layer as pre-merged
// vertex batches.
//
// A [Cache] partitions one layer into a grid of fixed-size cells (512×256
// by default). Tiles drawn at a fixed position go into every cell their
// box overlaps; the rest form a single moving cell. Each cell is compiled
// into one vertex batch the first time it becomes visible and reused on
// every later frame, so a frame costs one draw per visible cell instead of
// one per tile.
//
// Patterns whose geometry is fixed but whose texture scrolls return an
// [Updater] from FillBatch. Updaters run every frame right before their
// cell is drawn and adjust the cached vertices in place.
//
// When the tileset image changes, [Cache.NotifyTilesetChanged] drops every
// compiled batch; the grid partition itself is kept.
package tiles

import (
	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/surface"
	"github.com/gogpu/tilerender/vertex"
)

// Updater adjusts compiled vertices for the current frame.
type Updater interface {
	// Update is called with the camera position (negated for the moving
	// cell) and the clip rectangle the geometry was built with.
	Update(viewport tilerender.Point, clip tilerender.Rect)
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func(viewport tilerender.Point, clip tilerender.Rect)

// Update calls f.
func (f UpdaterFunc) Update(viewport tilerender.Point, clip tilerender.Rect) {
	f(viewport, clip)
}

// MultiUpdater runs several updaters in order.
type MultiUpdater []Updater

// Update runs every updater.
func (m MultiUpdater) Update(viewport tilerender.Point, clip tilerender.Rect) {
	for _, u := range m {
		u.Update(viewport, clip)
	}
}

// Pattern is a tile appearance from the tileset.
type Pattern interface {
	// DrawnAtItsPosition reports whether the pattern is drawn at its map
	// position regardless of the camera. Only such patterns are cached
	// in grid cells.
	DrawnAtItsPosition() bool

	// FillBatch appends the geometry covering dst to b. dst and clip are
	// relative to the cell being built. It may return an Updater to be
	// run before every draw of the batch, or nil.
	FillBatch(b *vertex.Batch, dst tilerender.Rect, tileset Tileset, clip tilerender.Rect) Updater
}

// Camera is the visible part of the map.
type Camera interface {
	BoundingBox() tilerender.Rect
}

// Tileset provides the image patterns sample from.
type Tileset interface {
	TilesImage() *surface.Surface
}

// Map is the map a cached layer belongs to.
type Map interface {
	// Size returns the map size in pixels.
	Size() tilerender.Size

	// Camera returns the active camera, or nil.
	Camera() Camera

	// CameraSurface returns the surface the camera renders into.
	CameraSurface() *surface.Surface

	// Tileset returns the current tileset.
	Tileset() Tileset
}

// TileInfo describes one tile of a layer.
type TileInfo struct {
	Pattern Pattern
	Box     tilerender.Rect
	Layer   int
}

// FixedCamera is a Camera with a settable bounding box.
type FixedCamera struct {
	Box tilerender.Rect
}

// BoundingBox implements Camera.
func (c *FixedCamera) BoundingBox() tilerender.Rect { return c.Box }

// MoveTo places the camera top-left corner at p.
func (c *FixedCamera) MoveTo(p tilerender.Point) {
	c.Box.X, c.Box.Y = p.X, p.Y
}
