// Package raster executes vertex batches and rectangle fills against RGBA8
// buffers.
//
// It plays the role of the GPU draw call for atlas pages: triangles are
// sampled at pixel centers with nearest-neighbor filtering, texels are
// modulated by the vertex color, and the result is combined with the
// destination through a blend function.
package raster

import (
	"math"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/internal/blend"
	"github.com/gogpu/tilerender/internal/image"
	"github.com/gogpu/tilerender/vertex"
)

// Options control a single draw.
type Options struct {
	// Offset is added to every vertex position.
	Offset tilerender.Point

	// Clip limits the destination pixels that may change.
	// An empty Clip means the whole destination.
	Clip tilerender.Rect

	// Source limits the texels that may be sampled.
	// An empty Source means the whole source buffer.
	Source tilerender.Rect

	// Blend combines source and destination. Nil means blend.SourceOver.
	Blend blend.Func
}

type target struct {
	dst    *image.Buf
	src    *image.Buf
	clip   tilerender.Rect
	source tilerender.Rect
	fn     blend.Func
}

func newTarget(dst, src *image.Buf, opts Options) (target, bool) {
	clip := dst.Bounds()
	if !opts.Clip.Empty() {
		clip = opts.Clip.Intersect(clip)
	}
	t := target{dst: dst, src: src, clip: clip, fn: opts.Blend}
	if t.fn == nil {
		t.fn = blend.SourceOver
	}
	if src != nil {
		t.source = src.Bounds()
		if !opts.Source.Empty() {
			t.source = opts.Source.Intersect(t.source)
		}
		if t.source.Empty() {
			return t, false
		}
	}
	return t, !clip.Empty()
}

// DrawTriangles draws verts as a triangle list. src may be nil, in which
// case the vertex colors are drawn untextured.
func DrawTriangles(dst *image.Buf, verts []vertex.Vertex, src *image.Buf, opts Options) {
	t, ok := newTarget(dst, src, opts)
	if !ok {
		return
	}
	off := vertex.V2(opts.Offset)

	i := 0
	for ; i+vertex.QuadVertices <= len(verts); i += vertex.QuadVertices {
		q := verts[i : i+vertex.QuadVertices]
		if isAxisQuad(q) {
			t.quad(q, off)
			continue
		}
		t.triangle(q[0], q[1], q[2], off)
		t.triangle(q[3], q[4], q[5], off)
	}
	for ; i+3 <= len(verts); i += 3 {
		t.triangle(verts[i], verts[i+1], verts[i+2], off)
	}
}

// FillRect blends c over the pixels of r.
func FillRect(dst *image.Buf, r tilerender.Rect, c tilerender.Color, opts Options) {
	t, ok := newTarget(dst, nil, opts)
	if !ok {
		return
	}
	r = r.Add(opts.Offset).Intersect(t.clip)
	if r.Empty() {
		return
	}
	for y := r.Y; y < r.Bottom(); y++ {
		row := dst.RowBytes(y)
		for x := r.X; x < r.Right(); x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			p[0], p[1], p[2], p[3] = t.fn(c.R, c.G, c.B, c.A, p[0], p[1], p[2], p[3])
		}
	}
}

// isAxisQuad reports whether six vertices form an axis-aligned quad in the
// layout produced by vertex.Batch.AddQuad with a single color.
func isAxisQuad(q []vertex.Vertex) bool {
	if q[0] != q[5] || q[2] != q[3] {
		return false
	}
	tl, bl, br, tr := q[0], q[1], q[2], q[4]
	if tl.Color != bl.Color || tl.Color != br.Color || tl.Color != tr.Color {
		return false
	}
	return tl.Position.X == bl.Position.X && bl.Position.Y == br.Position.Y &&
		br.Position.X == tr.Position.X && tr.Position.Y == tl.Position.Y &&
		tl.TexCoords.X == bl.TexCoords.X && bl.TexCoords.Y == br.TexCoords.Y &&
		br.TexCoords.X == tr.TexCoords.X && tr.TexCoords.Y == tl.TexCoords.Y
}

// span returns the pixel range [start, end) whose centers lie in [a, b).
func span(a, b float64) (int, int) {
	if a > b {
		a, b = b, a
	}
	return int(math.Ceil(a - 0.5)), int(math.Ceil(b - 0.5))
}

func (t *target) quad(q []vertex.Vertex, off vertex.Vec2) {
	x0, y0 := float64(q[0].Position.X+off.X), float64(q[0].Position.Y+off.Y)
	x1, y1 := float64(q[2].Position.X+off.X), float64(q[2].Position.Y+off.Y)
	if x0 == x1 || y0 == y1 {
		return
	}
	u0, v0 := float64(q[0].TexCoords.X), float64(q[0].TexCoords.Y)
	u1, v1 := float64(q[2].TexCoords.X), float64(q[2].TexCoords.Y)

	px0, px1 := span(x0, x1)
	py0, py1 := span(y0, y1)
	px0, px1 = max(px0, t.clip.X), min(px1, t.clip.Right())
	py0, py1 = max(py0, t.clip.Y), min(py1, t.clip.Bottom())
	if px0 >= px1 || py0 >= py1 {
		return
	}

	var cols []int
	if t.src != nil {
		cols = make([]int, px1-px0)
		for px := px0; px < px1; px++ {
			u := u0 + (float64(px)+0.5-x0)/(x1-x0)*(u1-u0)
			cols[px-px0] = clampTexel(u, t.source.X, t.source.Right())
		}
	}
	c := q[0].Color
	for py := py0; py < py1; py++ {
		row := t.dst.RowBytes(py)
		var srow []byte
		if t.src != nil {
			v := v0 + (float64(py)+0.5-y0)/(y1-y0)*(v1-v0)
			srow = t.src.RowBytes(clampTexel(v, t.source.Y, t.source.Bottom()))
		}
		for px := px0; px < px1; px++ {
			s := c
			if srow != nil {
				tx := cols[px-px0] * 4
				s = modulate(srow[tx], srow[tx+1], srow[tx+2], srow[tx+3], c)
			}
			p := row[px*4 : px*4+4 : px*4+4]
			p[0], p[1], p[2], p[3] = t.fn(s.R, s.G, s.B, s.A, p[0], p[1], p[2], p[3])
		}
	}
}

func (t *target) triangle(a, b, c vertex.Vertex, off vertex.Vec2) {
	p0 := pt(a.Position, off)
	p1 := pt(b.Position, off)
	p2 := pt(c.Position, off)
	area := edge(p0, p1, p2)
	if area == 0 {
		return
	}
	if area < 0 {
		p1, p2 = p2, p1
		b, c = c, b
		area = -area
	}

	minX, maxX := min(p0.x, p1.x, p2.x), max(p0.x, p1.x, p2.x)
	minY, maxY := min(p0.y, p1.y, p2.y), max(p0.y, p1.y, p2.y)
	px0, px1 := span(minX, maxX+1)
	py0, py1 := span(minY, maxY+1)
	px0, px1 = max(px0, t.clip.X), min(px1, t.clip.Right())
	py0, py1 = max(py0, t.clip.Y), min(py1, t.clip.Bottom())

	for py := py0; py < py1; py++ {
		row := t.dst.RowBytes(py)
		for px := px0; px < px1; px++ {
			q := point{float64(px) + 0.5, float64(py) + 0.5}
			w0 := edge(p1, p2, q)
			w1 := edge(p2, p0, q)
			w2 := edge(p0, p1, q)
			if !covers(w0, p1, p2) || !covers(w1, p2, p0) || !covers(w2, p0, p1) {
				continue
			}
			l0, l1, l2 := w0/area, w1/area, w2/area

			col := lerpColor(a.Color, b.Color, c.Color, l0, l1, l2)
			s := col
			if t.src != nil {
				u := l0*float64(a.TexCoords.X) + l1*float64(b.TexCoords.X) + l2*float64(c.TexCoords.X)
				v := l0*float64(a.TexCoords.Y) + l1*float64(b.TexCoords.Y) + l2*float64(c.TexCoords.Y)
				tx := clampTexel(u, t.source.X, t.source.Right())
				ty := clampTexel(v, t.source.Y, t.source.Bottom())
				sp := t.src.RowBytes(ty)[tx*4:]
				s = modulate(sp[0], sp[1], sp[2], sp[3], col)
			}
			p := row[px*4 : px*4+4 : px*4+4]
			p[0], p[1], p[2], p[3] = t.fn(s.R, s.G, s.B, s.A, p[0], p[1], p[2], p[3])
		}
	}
}

type point struct{ x, y float64 }

func pt(v, off vertex.Vec2) point {
	return point{float64(v.X + off.X), float64(v.Y + off.Y)}
}

func edge(a, b, c point) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// covers applies a tie-break for centers lying exactly on an edge: the
// two triangles sharing an edge walk it in opposite directions, so exactly
// one of them owns those pixels.
func covers(w float64, a, b point) bool {
	if w != 0 {
		return w > 0
	}
	dx, dy := b.x-a.x, b.y-a.y
	return dy > 0 || (dy == 0 && dx > 0)
}

func clampTexel(u float64, lo, hi int) int {
	i := int(math.Floor(u))
	if i < lo {
		return lo
	}
	if i >= hi {
		return hi - 1
	}
	return i
}

func modulate(r, g, b, a byte, c tilerender.Color) tilerender.Color {
	if c == tilerender.White {
		return tilerender.Color{R: r, G: g, B: b, A: a}
	}
	return tilerender.Color{
		R: blend.MulDiv255(r, c.R),
		G: blend.MulDiv255(g, c.G),
		B: blend.MulDiv255(b, c.B),
		A: blend.MulDiv255(a, c.A),
	}
}

func lerpColor(a, b, c tilerender.Color, l0, l1, l2 float64) tilerender.Color {
	if a == b && b == c {
		return a
	}
	ch := func(x, y, z uint8) uint8 {
		return uint8(math.Round(l0*float64(x) + l1*float64(y) + l2*float64(z)))
	}
	return tilerender.Color{R: ch(a.R, b.R, c.R), G: ch(a.G, b.G, c.G), B: ch(a.B, b.B, c.B), A: ch(a.A, b.A, c.A)}
}
