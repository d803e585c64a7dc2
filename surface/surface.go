// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	stdimage "image"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/gpu"
	"github.com/gogpu/tilerender/internal/image"
	"github.com/gogpu/tilerender/vertex"
)

// Surface is a drawable image owned by a Context.
//
// Opacity and blend mode apply when the surface is drawn onto another
// one. They do not change the surface's own pixels.
type Surface struct {
	ctx     *Context
	id      ID
	backing backing

	opacity uint8
	blend   tilerender.BlendMode

	// version is bumped by every mutation.
	version uint64

	// image caches pixels for reads until the next mutation.
	image      *image.Buf
	imageDirty bool

	released bool
}

func (c *Context) newSurface(b backing) *Surface {
	s := &Surface{ctx: c, backing: b, opacity: 255, imageDirty: true}
	s.id = c.reg.add(s)
	if d, ok := b.(*drawList); ok {
		d.owner = s.id
	}
	return s
}

// ID returns the identifier of s within its Context.
func (s *Surface) ID() ID { return s.id }

// Width returns the width in pixels.
func (s *Surface) Width() int { return s.backing.size().Width }

// Height returns the height in pixels.
func (s *Surface) Height() int { return s.backing.size().Height }

// Size returns the size in pixels.
func (s *Surface) Size() tilerender.Size { return s.backing.size() }

// Bounds returns the rectangle (0, 0, Width, Height).
func (s *Surface) Bounds() tilerender.Rect {
	return tilerender.RectAt(tilerender.Point{}, s.Size())
}

// Kind returns the current backing kind.
func (s *Surface) Kind() Kind { return s.backing.kind() }

// Opacity returns the alpha applied when s is drawn (0-255).
func (s *Surface) Opacity() uint8 { return s.opacity }

// SetOpacity sets the alpha applied when s is drawn.
func (s *Surface) SetOpacity(opacity uint8) { s.opacity = opacity }

// BlendMode returns the mode used when s is drawn.
func (s *Surface) BlendMode() tilerender.BlendMode { return s.blend }

// SetBlendMode sets the mode used when s is drawn.
func (s *Surface) SetBlendMode(m tilerender.BlendMode) { s.blend = m }

// Released reports whether Release has been called.
func (s *Surface) Released() bool { return s.released }

func (s *Surface) checkLive() {
	if s.released {
		tilerender.Fatal("surface: use after release", "surface", s.id)
	}
}

// touch records a mutation.
func (s *Surface) touch() {
	s.version++
	s.imageDirty = true
}

// stamp changes whenever the pixels of s may have changed.
func (s *Surface) stamp() uint64 {
	if d, ok := s.backing.(*drawList); ok {
		return s.version + d.stamp()
	}
	return s.version
}

// requestRender returns the render target of s, promoting a static image
// or a deferred list first.
func (s *Surface) requestRender() *renderTarget {
	var rt *renderTarget
	switch b := s.backing.(type) {
	case *renderTarget:
		return b
	case *staticTexture:
		rt = &renderTarget{view: s.ctx.alloc.NewView(b.buf.Width(), b.buf.Height())}
		if err := rt.view.WritePixels(b.buf.Data()); err != nil {
			tilerender.Fatal("surface: promotion copy failed", "surface", s.id, "err", err)
		}
	case *drawList:
		rt = &renderTarget{view: s.ctx.alloc.NewView(b.dims.Width, b.dims.Height)}
		b.replay(viewCanvas{ctx: s.ctx, view: rt.view})
	}
	old := s.backing.kind()
	s.backing.release()
	s.backing = rt
	tilerender.Logger().Debug("surface: promoted", "surface", s.id, "from", old,
		"page", rt.view.Page().Index(), "rect", rt.view.Rect())
	return rt
}

// apply runs o on the render target of s, or records it if s is deferred.
func (s *Surface) apply(o op) {
	s.checkLive()
	if d, ok := s.backing.(*drawList); ok {
		if src := o.source(); src != nil && src.readsFrom(s) {
			tilerender.Fatal("surface: deferred draw cycle", "surface", s.id, "source", src.id)
		}
		d.record(o)
	} else {
		rt := s.requestRender()
		o.apply(viewCanvas{ctx: s.ctx, view: rt.view})
	}
	s.touch()
}

// readsFrom reports whether s is target or replays a draw of target,
// following the recorded operations of deferred surfaces.
func (s *Surface) readsFrom(target *Surface) bool {
	seen := make(map[*Surface]bool)
	stack := []*Surface{s}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if d, ok := cur.backing.(*drawList); ok {
			for _, o := range d.ops {
				if src := o.source(); src != nil {
					stack = append(stack, src)
				}
			}
		}
	}
	return false
}

// Clear makes every pixel transparent. A deferred surface drops its
// recorded operations instead.
func (s *Surface) Clear() {
	s.checkLive()
	if d, ok := s.backing.(*drawList); ok {
		d.reset()
	} else {
		s.requestRender().view.Clear()
	}
	s.touch()
}

// ClearRect makes the pixels of r transparent. Pixels are overwritten,
// not blended.
func (s *Surface) ClearRect(r tilerender.Rect) {
	s.apply(fillOp{rect: r, color: tilerender.Transparent, mode: tilerender.BlendNone})
}

// FillWithColor fills the whole surface with c, alpha-blended when c is
// not opaque.
func (s *Surface) FillWithColor(c tilerender.Color) {
	s.FillRect(s.Bounds(), c)
}

// FillRect fills r with c, alpha-blended when c is not opaque.
func (s *Surface) FillRect(r tilerender.Rect, c tilerender.Color) {
	s.apply(fillOp{rect: r, color: c, mode: tilerender.BlendAlpha})
}

// Draw draws all of s onto dst at pos, using the opacity and blend mode
// of s.
func (s *Surface) Draw(dst *Surface, pos tilerender.Point) {
	s.DrawRegion(s.Bounds(), dst, pos)
}

// DrawRegion draws region of s onto dst with the region's top-left corner
// at pos. The region is clipped to s.
func (s *Surface) DrawRegion(region tilerender.Rect, dst *Surface, pos tilerender.Point) {
	s.checkLive()
	dst.apply(drawOp{src: s, region: region, pos: pos, opacity: s.opacity, mode: s.blend})
}

// DrawBatch draws the triangles of b onto s, translated by pos. Texture
// coordinates address pixels of tex, which may be nil for untextured
// geometry. The blend mode of tex applies; untextured batches blend.
func (s *Surface) DrawBatch(b *vertex.Batch, pos tilerender.Point, tex *Surface) {
	if b.Empty() {
		return
	}
	mode := tilerender.BlendAlpha
	if tex != nil {
		tex.checkLive()
		mode = tex.blend
	}
	s.apply(batchOp{verts: b.Vertices(), pos: pos, tex: tex, mode: mode})
}

// GPUTexture returns the GPU texture mirroring s and the region of it
// holding s, flushing pending writes first. The texture is nil when the
// context has no device or s is deferred.
func (s *Surface) GPUTexture() (gpu.Texture, tilerender.Rect) {
	s.checkLive()
	t := s.backing.texture()
	return t.GPU, t.Rect
}

// snapshot returns the current pixels, taking a new CPU copy only when
// s changed since the last read.
func (s *Surface) snapshot() *image.Buf {
	s.checkLive()
	if _, ok := s.backing.(*drawList); ok {
		return s.backing.pixels()
	}
	if s.imageDirty || s.image == nil {
		s.image = s.backing.pixels()
		s.imageDirty = false
	}
	return s.image
}

// Pixels returns a copy of the pixels as tightly packed RGBA rows.
func (s *Surface) Pixels() []byte {
	return append([]byte(nil), s.snapshot().Data()...)
}

// SetPixels replaces every pixel with data, tightly packed RGBA rows.
// A static or deferred surface becomes dynamic.
func (s *Surface) SetPixels(data []byte) error {
	s.checkLive()
	if want := s.Width() * s.Height() * image.BytesPerPixel; len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPixelBufferSize, len(data), want)
	}
	if err := s.requestRender().view.WritePixels(data); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *Surface) pixelAt(index int) (int, int) {
	w, h := s.Width(), s.Height()
	if index < 0 || index >= w*h {
		tilerender.Fatal("surface: pixel index out of range", "index", index, "pixels", w*h)
	}
	return index % w, index / w
}

// Pixel returns the pixel at index, counted row by row from the top-left.
func (s *Surface) Pixel(index int) tilerender.Color {
	x, y := s.pixelAt(index)
	return s.snapshot().Pixel(x, y)
}

// IsPixelTransparent reports whether the pixel at index has zero alpha.
func (s *Surface) IsPixelTransparent(index int) bool {
	return s.Pixel(index).A == 0
}

// Image returns a copy of the pixels as a standard library image.
func (s *Surface) Image() *stdimage.NRGBA {
	return s.snapshot().ToNRGBA()
}

// Seal returns a new static surface holding the current pixels of s,
// with the same opacity and blend mode. s is not modified; release it
// to give its atlas space back.
func (s *Surface) Seal() *Surface {
	buf := s.snapshot().Clone()
	sealed := s.ctx.newStatic(buf, fmt.Sprintf("sealed_%d", s.id))
	sealed.opacity = s.opacity
	sealed.blend = s.blend
	return sealed
}

// Release frees the backing of s. Calling it again does nothing.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.backing.release()
	s.ctx.reg.remove(s.id)
	s.image = nil
	s.released = true
	s.version++
}

func (s *Surface) String() string {
	return fmt.Sprintf("Surface(%d, %dx%d, %s)", s.id, s.Width(), s.Height(), s.Kind())
}
