package vertex

import "github.com/gogpu/tilerender"

// QuadView is a window onto a run of vertices inside a Batch, used to
// nudge already-batched quads without rebuilding the batch.
//
// Views index into the batch by offset, so they stay valid when the batch
// grows.
type QuadView struct {
	batch  *Batch
	offset int
	size   int
}

// Len returns the number of vertices in the view.
func (v QuadView) Len() int {
	return v.size
}

// Vertex returns a pointer to the i-th vertex of the view.
func (v QuadView) Vertex(i int) *Vertex {
	if i < 0 || i >= v.size {
		panic("vertex: index out of view")
	}
	return &v.batch.vertices[v.offset+i]
}

// SubView returns the view starting off vertices further in.
func (v QuadView) SubView(off int) QuadView {
	if off < 0 || off > v.size {
		panic("vertex: sub view out of range")
	}
	return QuadView{batch: v.batch, offset: v.offset + off, size: v.size - off}
}

// SetPositions moves the first quad of the view to cover r.
func (v QuadView) SetPositions(r tilerender.Rect) {
	pos := corners(r)
	for i := range QuadVertices {
		v.Vertex(i).Position = pos[i]
	}
}

// SetUVs makes the first quad of the view sample the texels in r.
func (v QuadView) SetUVs(r tilerender.Rect) {
	tex := corners(r)
	for i := range QuadVertices {
		v.Vertex(i).TexCoords = tex[i]
	}
}

// MoveTo translates the first quad so its top-left corner lands on p.
func (v QuadView) MoveTo(p tilerender.Point) {
	delta := V2(p).Sub(v.Vertex(0).Position)
	for i := range QuadVertices {
		vx := v.Vertex(i)
		vx.Position = vx.Position.Add(delta)
	}
}

// SetQuadOffset4 lays out four consecutive quads so that the texels in uvs,
// scrolled by offset and wrapped around, exactly fill target.
//
// offset must satisfy 0 <= offset < uvs size on both axes. Quads that end
// up empty collapse to a zero rectangle and draw nothing. The view must
// span at least four quads.
func (v QuadView) SetQuadOffset4(target tilerender.Rect, offset tilerender.Point, uvs tilerender.Rect) {
	if v.size < 4*QuadVertices {
		panic("vertex: SetQuadOffset4 needs a view of four quads")
	}
	w, h := target.Width, target.Height
	uw, uh := uvs.Width, uvs.Height
	shifts := [4]struct{ pos, uv tilerender.Point }{
		{tilerender.Pt(0, 0), tilerender.Pt(0, 0)},
		{tilerender.Pt(0, -h), tilerender.Pt(0, uh)},
		{tilerender.Pt(-w, -h), tilerender.Pt(uw, uh)},
		{tilerender.Pt(-w, 0), tilerender.Pt(uw, 0)},
	}
	for i, s := range shifts {
		q := v.SubView(i * QuadVertices)

		moved := target.Add(offset).Add(s.pos)
		q.SetPositions(moved.Intersect(target))

		mask := uvs.Add(offset.Neg()).Add(s.uv)
		q.SetUVs(uvs.Intersect(mask))
	}
}

// Clip shrinks the first quad of the view to its intersection with r,
// adjusting texture coordinates proportionally. A quad outside r collapses
// to a zero rectangle.
func (v QuadView) Clip(r tilerender.Rect) {
	tl, br := v.Vertex(0), v.Vertex(2)
	x0, y0, x1, y1 := tl.Position.X, tl.Position.Y, br.Position.X, br.Position.Y
	if x1 <= x0 || y1 <= y0 {
		return
	}
	u0, v0, u1, v1 := tl.TexCoords.X, tl.TexCoords.Y, br.TexCoords.X, br.TexCoords.Y

	cx0 := max(x0, float32(r.X))
	cy0 := max(y0, float32(r.Y))
	cx1 := min(x1, float32(r.Right()))
	cy1 := min(y1, float32(r.Bottom()))
	if cx1 <= cx0 || cy1 <= cy0 {
		v.SetPositions(tilerender.Rect{})
		v.SetUVs(tilerender.Rect{})
		return
	}
	if cx0 == x0 && cy0 == y0 && cx1 == x1 && cy1 == y1 {
		return
	}

	su := (u1 - u0) / (x1 - x0)
	sv := (v1 - v0) / (y1 - y0)
	pos := [4]Vec2{{cx0, cy0}, {cx0, cy1}, {cx1, cy1}, {cx1, cy0}}
	tex := [4]Vec2{
		{u0 + (cx0-x0)*su, v0 + (cy0-y0)*sv},
		{u0 + (cx0-x0)*su, v0 + (cy1-y0)*sv},
		{u0 + (cx1-x0)*su, v0 + (cy1-y0)*sv},
		{u0 + (cx1-x0)*su, v0 + (cy0-y0)*sv},
	}
	for i, c := range [QuadVertices]int{0, 1, 2, 2, 3, 0} {
		vx := v.Vertex(i)
		vx.Position = pos[c]
		vx.TexCoords = tex[c]
	}
}
