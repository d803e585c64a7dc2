// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/gpu"
	"github.com/gogpu/tilerender/internal/atlas"
	"github.com/gogpu/tilerender/internal/image"
)

// Kind names the backing currently held by a Surface.
type Kind uint8

const (
	// KindStatic is an immutable image.
	KindStatic Kind = iota
	// KindDynamic is an atlas render target.
	KindDynamic
	// KindDeferred is a list of recorded draw operations.
	KindDeferred
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "Static"
	case KindDynamic:
		return "Dynamic"
	case KindDeferred:
		return "Deferred"
	default:
		return "Unknown"
	}
}

// backing is implemented by *staticTexture, *renderTarget and *drawList
// only. Surface switches on the concrete type wherever the three differ.
type backing interface {
	kind() Kind
	size() tilerender.Size

	// texture returns pixels for sampling. They stay valid until the next
	// mutation of the surface.
	texture() atlas.Texture

	// pixels returns the current pixels. The result must not be modified.
	pixels() *image.Buf

	release()
}

// staticTexture is an immutable image with an optional GPU mirror.
type staticTexture struct {
	buf    *image.Buf
	mirror gpu.Texture
}

func newStaticTexture(c *Context, buf *image.Buf, label string) *staticTexture {
	st := &staticTexture{buf: buf}
	if c.opts.device == nil {
		return st
	}
	tex, err := c.opts.device.NewTexture(label, buf.Width(), buf.Height())
	if err != nil {
		tilerender.Fatal("surface: static texture creation failed", "label", label, "err", err)
	}
	if err := tex.UpdateRegion(0, 0, buf.Width(), buf.Height(), buf.Data()); err != nil {
		tilerender.Logger().Warn("surface: static texture upload failed", "label", label, "err", err)
	}
	st.mirror = tex
	return st
}

func (t *staticTexture) kind() Kind            { return KindStatic }
func (t *staticTexture) size() tilerender.Size { return tilerender.Sz(t.buf.Width(), t.buf.Height()) }
func (t *staticTexture) pixels() *image.Buf    { return t.buf }

func (t *staticTexture) texture() atlas.Texture {
	return atlas.Texture{Pixels: t.buf, Rect: t.buf.Bounds(), GPU: t.mirror}
}

func (t *staticTexture) release() {
	if t.mirror != nil {
		t.mirror.Destroy()
		t.mirror = nil
	}
}

// renderTarget draws into an atlas view.
type renderTarget struct {
	view *atlas.View
}

func (r *renderTarget) kind() Kind             { return KindDynamic }
func (r *renderTarget) size() tilerender.Size  { return tilerender.Sz(r.view.Width(), r.view.Height()) }
func (r *renderTarget) texture() atlas.Texture { return r.view.Texture() }
func (r *renderTarget) pixels() *image.Buf     { return r.view.Image() }
func (r *renderTarget) release()               { r.view.Release() }

// drawList records operations and rasterizes them on demand.
type drawList struct {
	ctx   *Context
	owner ID
	dims  tilerender.Size
	ops   []op

	// version changes whenever ops change.
	version uint64

	cache      *image.Buf
	cacheStamp uint64
	cacheValid bool
	rasters    int
}

func (d *drawList) kind() Kind            { return KindDeferred }
func (d *drawList) size() tilerender.Size { return d.dims }

func (d *drawList) record(o op) {
	d.ops = append(d.ops, o.retain())
	d.version++
}

func (d *drawList) reset() {
	clear(d.ops)
	d.ops = d.ops[:0]
	d.version++
}

// stamp changes whenever the rasterized result may change: on record,
// on reset and on any mutation of a surface the list reads from.
func (d *drawList) stamp() uint64 {
	st := d.version
	for _, o := range d.ops {
		if src := o.source(); src != nil {
			st += src.stamp()
		}
	}
	return st
}

// replay applies every recorded operation to c in order.
func (d *drawList) replay(c canvas) {
	for _, o := range d.ops {
		o.apply(c)
	}
}

func (d *drawList) texture() atlas.Texture {
	st := d.stamp()
	if !d.cacheValid || st != d.cacheStamp {
		if d.cache == nil {
			d.cache = d.ctx.pool.Get(d.dims.Width, d.dims.Height)
		} else {
			d.cache.Clear()
		}
		d.replay(bufCanvas{ctx: d.ctx, buf: d.cache})
		d.cacheStamp = st
		d.cacheValid = true
		d.rasters++
		tilerender.Logger().Debug("surface: deferred list rasterized",
			"surface", d.owner, "ops", len(d.ops))
	}
	return atlas.Texture{Pixels: d.cache, Rect: d.cache.Bounds()}
}

func (d *drawList) pixels() *image.Buf {
	return d.texture().Pixels
}

func (d *drawList) release() {
	clear(d.ops)
	d.ops = nil
	if d.cache != nil {
		d.ctx.pool.Put(d.cache)
		d.cache = nil
	}
	d.cacheValid = false
}
