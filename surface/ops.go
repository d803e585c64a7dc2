// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"slices"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/internal/atlas"
	"github.com/gogpu/tilerender/internal/blend"
	"github.com/gogpu/tilerender/internal/image"
	"github.com/gogpu/tilerender/internal/raster"
	"github.com/gogpu/tilerender/vertex"
)

// canvas executes draws. viewCanvas draws into an atlas view, bufCanvas
// into a plain buffer used by deferred lists.
type canvas interface {
	context() *Context
	draw(verts []vertex.Vertex, tex atlas.Texture, mode tilerender.BlendMode)
	fill(r tilerender.Rect, c tilerender.Color, mode tilerender.BlendMode)
}

type viewCanvas struct {
	ctx  *Context
	view *atlas.View
}

func (c viewCanvas) context() *Context { return c.ctx }

func (c viewCanvas) draw(verts []vertex.Vertex, tex atlas.Texture, mode tilerender.BlendMode) {
	c.view.Draw(verts, atlas.DrawOptions{Texture: tex, Blend: mode})
}

func (c viewCanvas) fill(r tilerender.Rect, col tilerender.Color, mode tilerender.BlendMode) {
	c.view.FillRect(r, col, mode)
}

type bufCanvas struct {
	ctx *Context
	buf *image.Buf
}

func (c bufCanvas) context() *Context { return c.ctx }

func (c bufCanvas) draw(verts []vertex.Vertex, tex atlas.Texture, mode tilerender.BlendMode) {
	raster.DrawTriangles(c.buf, verts, tex.Pixels, raster.Options{
		Source: tex.Rect,
		Blend:  blend.ForState(mode.State()),
	})
}

func (c bufCanvas) fill(r tilerender.Rect, col tilerender.Color, mode tilerender.BlendMode) {
	raster.FillRect(c.buf, r, col, raster.Options{Blend: blend.ForState(mode.State())})
}

// op is one draw operation, applied immediately to a render target or
// recorded by a deferred list.
type op interface {
	apply(c canvas)

	// source returns the surface the operation reads from, or nil.
	source() *Surface

	// retain returns a copy that does not alias caller memory.
	retain() op
}

type fillOp struct {
	rect  tilerender.Rect
	color tilerender.Color
	mode  tilerender.BlendMode
}

func (o fillOp) apply(c canvas)   { c.fill(o.rect, o.color, o.mode) }
func (o fillOp) source() *Surface { return nil }
func (o fillOp) retain() op       { return o }

// drawOp composites a region of another surface.
type drawOp struct {
	src     *Surface
	region  tilerender.Rect
	pos     tilerender.Point
	opacity uint8
	mode    tilerender.BlendMode
}

func (o drawOp) source() *Surface { return o.src }
func (o drawOp) retain() op       { return o }

func (o drawOp) apply(c canvas) {
	if o.src.released {
		tilerender.Logger().Warn("surface: skipping draw from released surface", "surface", o.src.id)
		return
	}
	if vc, ok := c.(viewCanvas); ok {
		if rt, ok := o.src.backing.(*renderTarget); ok {
			rt.view.DrawOn(vc.view, o.region, o.pos, o.opacity, o.mode)
			return
		}
	}
	t := o.src.backing.texture()
	q := c.context().quad
	q.Reset()
	if !t.AppendQuad(q, o.region, o.pos, o.opacity) {
		return
	}
	c.draw(q.Vertices(), t, o.mode)
}

// batchOp draws a vertex batch whose texture coordinates are relative to
// the texture surface.
type batchOp struct {
	verts []vertex.Vertex
	pos   tilerender.Point
	tex   *Surface
	mode  tilerender.BlendMode
}

func (o batchOp) source() *Surface { return o.tex }

func (o batchOp) retain() op {
	o.verts = slices.Clone(o.verts)
	return o
}

func (o batchOp) apply(c canvas) {
	var t atlas.Texture
	var uv tilerender.Point
	if o.tex != nil {
		if o.tex.released {
			tilerender.Logger().Warn("surface: skipping batch with released texture", "surface", o.tex.id)
			return
		}
		t = o.tex.backing.texture()
		uv = t.Rect.TopLeft()
	}
	c.draw(c.context().translated(o.verts, o.pos, uv), t, o.mode)
}
