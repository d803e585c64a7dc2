// Package vertex holds the vertex batches that tile patterns append their
// geometry to.
//
// Quads are stored as two triangles, six vertices in the order top-left,
// bottom-left, bottom-right, bottom-right, top-right, top-left. Texture
// coordinates are in texels of the texture the batch is drawn with.
package vertex

import "github.com/gogpu/tilerender"

// QuadVertices is the number of vertices AddQuad appends.
const QuadVertices = 6

// Vec2 is a 2D vector in pixels.
type Vec2 struct {
	X, Y float32
}

// V2 converts a point to a Vec2.
func V2(p tilerender.Point) Vec2 {
	return Vec2{X: float32(p.X), Y: float32(p.Y)}
}

// Add returns v+w.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v-w.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Vertex is one corner of a triangle.
type Vertex struct {
	Position  Vec2
	TexCoords Vec2
	Color     tilerender.Color
}

// corners returns the quad corners of r in vertex order.
func corners(r tilerender.Rect) [QuadVertices]Vec2 {
	tl := Vec2{X: float32(r.X), Y: float32(r.Y)}
	bl := Vec2{X: float32(r.X), Y: float32(r.Bottom())}
	br := Vec2{X: float32(r.Right()), Y: float32(r.Bottom())}
	tr := Vec2{X: float32(r.Right()), Y: float32(r.Y)}
	return [QuadVertices]Vec2{tl, bl, br, br, tr, tl}
}
