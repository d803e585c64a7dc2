package atlas

import (
	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/gpu"
	"github.com/gogpu/tilerender/internal/blend"
	"github.com/gogpu/tilerender/internal/image"
	"github.com/gogpu/tilerender/internal/raster"
	"github.com/gogpu/tilerender/vertex"
)

// Texture is a readable region of a pixel buffer.
//
// Vertices sampling a Texture address texels in Pixels coordinates, so a
// view's own pixels start at Rect.TopLeft().
type Texture struct {
	Pixels *image.Buf
	Rect   tilerender.Rect

	// GPU mirrors Pixels, or is nil.
	GPU gpu.Texture
}

// Valid reports whether t has pixels.
func (t Texture) Valid() bool {
	return t.Pixels != nil && !t.Rect.Empty()
}

// DrawOptions configure View.Draw.
type DrawOptions struct {
	// Texture is sampled by the vertices. A zero Texture draws vertex
	// colors only.
	Texture Texture

	// Blend selects how source pixels combine with the view.
	Blend tilerender.BlendMode
}

// View is a render target backed by one bin of an atlas page.
//
// Coordinates passed to a view are relative to its top-left corner and
// are clipped to its rectangle.
type View struct {
	alloc *Allocator
	page  *Page
	bin   *Bin

	// dirty is set when this view wrote to the page since its last read.
	dirty    bool
	released bool
}

// Rect returns the view rectangle in page coordinates.
func (v *View) Rect() tilerender.Rect { return v.bin.rect }

// Width returns the view width.
func (v *View) Width() int { return v.bin.rect.Width }

// Height returns the view height.
func (v *View) Height() int { return v.bin.rect.Height }

// Page returns the page holding the view.
func (v *View) Page() *Page { return v.page }

// Bin returns the bin backing the view.
func (v *View) Bin() *Bin { return v.bin }

// Released reports whether Release has been called.
func (v *View) Released() bool { return v.released }

func (v *View) target() *image.Buf {
	if v.released {
		tilerender.Fatal("atlas: view used after release", "bin", v.bin.id)
	}
	v.dirty = true
	v.page.markDirty()
	return v.page.back
}

func (v *View) rasterOptions(mode tilerender.BlendMode) raster.Options {
	return raster.Options{
		Offset: v.bin.rect.TopLeft(),
		Clip:   v.bin.rect,
		Blend:  blend.ForState(mode.State()),
	}
}

// Draw draws verts as a triangle list.
func (v *View) Draw(verts []vertex.Vertex, opts DrawOptions) {
	if len(verts) == 0 {
		return
	}
	dst := v.target()
	ro := v.rasterOptions(opts.Blend)
	ro.Source = opts.Texture.Rect
	raster.DrawTriangles(dst, verts, opts.Texture.Pixels, ro)
}

// FillRect fills r with c.
func (v *View) FillRect(r tilerender.Rect, c tilerender.Color, mode tilerender.BlendMode) {
	dst := v.target()
	raster.FillRect(dst, r, c, v.rasterOptions(mode))
}

// Clear sets every pixel of the view to transparent.
func (v *View) Clear() {
	v.ClearRect(tilerender.R(0, 0, v.Width(), v.Height()))
}

// ClearRect sets the pixels of r to transparent. Pixels are overwritten,
// not blended.
func (v *View) ClearRect(r tilerender.Rect) {
	v.FillRect(r, tilerender.Transparent, tilerender.BlendNone)
}

// WritePixels replaces the view content with data, tightly packed RGBA8
// rows of Width() pixels.
func (v *View) WritePixels(data []byte) error {
	src, err := image.FromRaw(data, v.Width(), v.Height())
	if err != nil {
		return err
	}
	dst := v.target()
	dst.CopyRect(src, src.Bounds(), v.bin.rect.TopLeft())
	return nil
}

// Texture returns the readable texture of the view, flushing the page
// first if this view has unflushed writes.
func (v *View) Texture() Texture {
	if v.released {
		tilerender.Fatal("atlas: view used after release", "bin", v.bin.id)
	}
	if v.dirty {
		v.page.flush()
		v.dirty = false
	}
	return Texture{Pixels: v.page.front, Rect: v.bin.rect, GPU: v.page.mirror}
}

// Image returns a copy of the view pixels.
func (v *View) Image() *image.Buf {
	t := v.Texture()
	return t.Pixels.Crop(t.Rect)
}

// AppendQuad appends to b a quad drawing region of t, relative to t.Rect
// and clipped to it, with its top-left corner at pos. The quad color is
// white with alpha opacity. It reports whether anything was appended.
func (t Texture) AppendQuad(b *vertex.Batch, region tilerender.Rect, pos tilerender.Point, opacity uint8) bool {
	want := region.Add(t.Rect.TopLeft())
	src := want.Intersect(t.Rect)
	if src.Empty() {
		return false
	}
	pos = pos.Add(src.TopLeft().Sub(want.TopLeft()))
	b.AddQuad(tilerender.RectAt(pos, src.Size()), src, tilerender.White.WithAlpha(opacity))
	return true
}

// DrawOn composites region of this view onto dst with its top-left corner
// at pos. The region is relative to this view and clipped to it. Source
// alpha is multiplied by opacity.
func (v *View) DrawOn(dst *View, region tilerender.Rect, pos tilerender.Point, opacity uint8, mode tilerender.BlendMode) {
	t := v.Texture()
	b := vertex.NewBatch(vertex.QuadVertices)
	if !t.AppendQuad(b, region, pos, opacity) {
		return
	}
	dst.Draw(b.Vertices(), DrawOptions{Texture: t, Blend: mode})
}

// Release returns the bin to the allocator. Calling it again does nothing.
func (v *View) Release() {
	if v.released {
		return
	}
	v.released = true
	v.alloc.Release(v.bin)
}
