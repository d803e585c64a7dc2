package tiles

import (
	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/vertex"
)

// SimplePattern repeats one tileset rectangle over the tile box.
type SimplePattern struct {
	// Source is the pattern rectangle in the tileset image.
	Source tilerender.Rect
}

// DrawnAtItsPosition implements Pattern.
func (p SimplePattern) DrawnAtItsPosition() bool { return true }

// FillBatch appends one quad per repetition, clipped to clip.
func (p SimplePattern) FillBatch(b *vertex.Batch, dst tilerender.Rect, _ Tileset, clip tilerender.Rect) Updater {
	repeat(b, p.Source, dst, clip)
	return nil
}

// repeat covers dst with copies of src, clipping each to dst and clip.
func repeat(b *vertex.Batch, src, dst, clip tilerender.Rect) {
	if src.Empty() {
		return
	}
	area := dst.Intersect(clip)
	if area.Empty() {
		return
	}
	for y := dst.Y; y < dst.Bottom(); y += src.Height {
		for x := dst.X; x < dst.Right(); x += src.Width {
			inst := tilerender.R(x, y, src.Width, src.Height)
			vis := inst.Intersect(area)
			if vis.Empty() {
				continue
			}
			uv := tilerender.R(src.X+vis.X-x, src.Y+vis.Y-y, vis.Width, vis.Height)
			b.AddQuad(vis, uv, tilerender.White)
		}
	}
}

// SelfScrollingPattern is drawn at its position but its texture scrolls
// with the camera, divided by Ratio, wrapping around the pattern.
type SelfScrollingPattern struct {
	Source tilerender.Rect

	// Ratio divides the camera offset. Zero means DefaultParallaxRatio.
	Ratio int
}

// DrawnAtItsPosition implements Pattern.
func (p SelfScrollingPattern) DrawnAtItsPosition() bool { return true }

// FillBatch appends four quads per repetition overlapping clip and
// returns the updater that scrolls them.
func (p SelfScrollingPattern) FillBatch(b *vertex.Batch, dst tilerender.Rect, _ Tileset, clip tilerender.Rect) Updater {
	if p.Source.Empty() {
		return nil
	}
	ratio := p.Ratio
	if ratio < 1 {
		ratio = DefaultParallaxRatio
	}
	var ups MultiUpdater
	for y := dst.Y; y < dst.Bottom(); y += p.Source.Height {
		for x := dst.X; x < dst.Right(); x += p.Source.Width {
			rep := tilerender.R(x, y, p.Source.Width, p.Source.Height)
			base := rep.Intersect(dst)
			if !base.Overlaps(clip) {
				continue
			}
			start := b.Len()
			for range 4 {
				b.AddQuad(tilerender.Rect{}, tilerender.Rect{}, tilerender.White)
			}
			u := &scrollUpdater{
				quads: b.View(start, 4*vertex.QuadVertices),
				rep:   rep,
				base:  base,
				uvs:   p.Source,
				ratio: ratio,
			}
			u.Update(tilerender.Point{}, clip)
			ups = append(ups, u)
		}
	}
	switch len(ups) {
	case 0:
		return nil
	case 1:
		return ups[0]
	}
	return ups
}

// scrollUpdater scrolls the texture of one pattern repetition. rep is the
// whole repetition and base the part of it inside the pattern box, which
// is smaller for the last row and column.
type scrollUpdater struct {
	quads vertex.QuadView
	rep   tilerender.Rect
	base  tilerender.Rect
	uvs   tilerender.Rect
	ratio int
}

func (u *scrollUpdater) Update(viewport tilerender.Point, clip tilerender.Rect) {
	off := viewport.Div(u.ratio)
	off.X = wrap(off.X, u.uvs.Width)
	off.Y = wrap(off.Y, u.uvs.Height)
	u.quads.SetQuadOffset4(u.rep, off, u.uvs)

	area := u.base
	if !clip.Empty() {
		area = area.Intersect(clip)
	}
	if area == u.rep {
		return
	}
	for i := range 4 {
		u.quads.SubView(i * vertex.QuadVertices).Clip(area)
	}
}

// wrap returns v modulo n in [0, n).
func wrap(v, n int) int {
	m := v % n
	if m < 0 {
		m += n
	}
	return m
}

// ParallaxPattern moves with the camera at a reduced speed, so it is not
// drawn at its position and is cached in the moving cell.
type ParallaxPattern struct {
	Source tilerender.Rect
}

// DrawnAtItsPosition implements Pattern.
func (p ParallaxPattern) DrawnAtItsPosition() bool { return false }

// FillBatch appends the repetitions in map coordinates.
func (p ParallaxPattern) FillBatch(b *vertex.Batch, dst tilerender.Rect, _ Tileset, clip tilerender.Rect) Updater {
	repeat(b, p.Source, dst, clip)
	return nil
}
