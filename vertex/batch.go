package vertex

import "github.com/gogpu/tilerender"

// Batch is a growable list of triangle vertices drawn with a single texture.
//
// Batch is not safe for concurrent use.
type Batch struct {
	vertices []Vertex
}

// NewBatch creates an empty batch with room for capacity vertices.
func NewBatch(capacity int) *Batch {
	return &Batch{vertices: make([]Vertex, 0, capacity)}
}

// Append adds raw vertices. The total count should stay a multiple of three.
func (b *Batch) Append(v ...Vertex) {
	b.vertices = append(b.vertices, v...)
}

// AddQuad appends a quad covering dst, sampling the texels in uvs, tinted
// by c, and returns a view onto its six vertices.
func (b *Batch) AddQuad(dst, uvs tilerender.Rect, c tilerender.Color) QuadView {
	pos := corners(dst)
	tex := corners(uvs)
	for i := range QuadVertices {
		b.vertices = append(b.vertices, Vertex{Position: pos[i], TexCoords: tex[i], Color: c})
	}
	return QuadView{batch: b, offset: len(b.vertices) - QuadVertices, size: QuadVertices}
}

// Len returns the number of vertices.
func (b *Batch) Len() int {
	return len(b.vertices)
}

// Empty reports whether the batch has no vertices.
func (b *Batch) Empty() bool {
	return len(b.vertices) == 0
}

// Vertices returns the vertex slice. It is valid until the next append.
func (b *Batch) Vertices() []Vertex {
	return b.vertices
}

// Reset removes all vertices and keeps the capacity.
func (b *Batch) Reset() {
	b.vertices = b.vertices[:0]
}

// View returns a view onto size vertices starting at offset.
func (b *Batch) View(offset, size int) QuadView {
	if offset < 0 || size < 0 || offset+size > len(b.vertices) {
		panic("vertex: view out of range")
	}
	return QuadView{batch: b, offset: offset, size: size}
}
