// Package image provides the CPU pixel buffers that back atlas pages and
// static surfaces.
//
// Every buffer stores 8-bit RGBA with straight (non-premultiplied) alpha,
// rows packed without padding.
package image

import (
	"errors"
	"image"

	"github.com/gogpu/tilerender"
)

// BytesPerPixel is the size of one RGBA8 pixel.
const BytesPerPixel = 4

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrDataSize is returned when raw pixel data does not match the dimensions.
	ErrDataSize = errors.New("image: data length does not match dimensions")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// Buf is an RGBA8 pixel buffer.
//
// Buf is not safe for concurrent use.
type Buf struct {
	data   []byte
	width  int
	height int
}

// NewBuf creates a zeroed (fully transparent) buffer.
func NewBuf(width, height int) (*Buf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Buf{
		data:   make([]byte, width*height*BytesPerPixel),
		width:  width,
		height: height,
	}, nil
}

// MustNewBuf is like NewBuf but panics on invalid dimensions.
func MustNewBuf(width, height int) *Buf {
	b, err := NewBuf(width, height)
	if err != nil {
		panic(err)
	}
	return b
}

// FromRaw wraps existing RGBA8 data without copying.
// len(data) must be exactly width*height*4.
func FromRaw(data []byte, width, height int) (*Buf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(data) != width*height*BytesPerPixel {
		return nil, ErrDataSize
	}
	return &Buf{data: data, width: width, height: height}, nil
}

// Clone creates a deep copy of the buffer.
func (b *Buf) Clone() *Buf {
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return &Buf{data: data, width: b.width, height: b.height}
}

// Width returns the buffer width in pixels.
func (b *Buf) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *Buf) Height() int {
	return b.height
}

// Stride returns the number of bytes per row.
func (b *Buf) Stride() int {
	return b.width * BytesPerPixel
}

// Bounds returns the buffer extent as a rectangle at the origin.
func (b *Buf) Bounds() tilerender.Rect {
	return tilerender.R(0, 0, b.width, b.height)
}

// Data returns the raw pixel data slice.
func (b *Buf) Data() []byte {
	return b.data
}

// RowBytes returns the pixel data for row y, or nil if y is out of bounds.
func (b *Buf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.Stride()
	return b.data[start : start+b.Stride()]
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (b *Buf) PixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return (y*b.width + x) * BytesPerPixel
}

// Pixel returns the color at (x, y), or Transparent when out of bounds.
func (b *Buf) Pixel(x, y int) tilerender.Color {
	off := b.PixelOffset(x, y)
	if off < 0 {
		return tilerender.Transparent
	}
	p := b.data[off : off+4 : off+4]
	return tilerender.Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// SetPixel stores c at (x, y).
func (b *Buf) SetPixel(x, y int, c tilerender.Color) error {
	off := b.PixelOffset(x, y)
	if off < 0 {
		return ErrOutOfBounds
	}
	p := b.data[off : off+4 : off+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	return nil
}

// Clear sets all pixels to transparent.
func (b *Buf) Clear() {
	clear(b.data)
}

// Fill overwrites the pixels of r, clipped to the buffer, with c.
func (b *Buf) Fill(r tilerender.Rect, c tilerender.Color) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	if c == tilerender.Transparent {
		for y := r.Y; y < r.Bottom(); y++ {
			row := b.RowBytes(y)
			clear(row[r.X*4 : r.Right()*4])
		}
		return
	}
	for y := r.Y; y < r.Bottom(); y++ {
		row := b.RowBytes(y)[r.X*4 : r.Right()*4]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

// CopyRect copies the src pixels in srcRect to dst at dstPos, overwriting
// what was there. The copy is clipped to both buffers.
func (b *Buf) CopyRect(src *Buf, srcRect tilerender.Rect, dstPos tilerender.Point) {
	srcRect = srcRect.Intersect(src.Bounds())
	if srcRect.Empty() {
		return
	}
	dstRect := tilerender.RectAt(dstPos, srcRect.Size())
	clipped := dstRect.Intersect(b.Bounds())
	if clipped.Empty() {
		return
	}
	sx := srcRect.X + clipped.X - dstRect.X
	sy := srcRect.Y + clipped.Y - dstRect.Y
	n := clipped.Width * BytesPerPixel
	for y := 0; y < clipped.Height; y++ {
		s := src.RowBytes(sy + y)[sx*4:]
		d := b.RowBytes(clipped.Y + y)[clipped.X*4:]
		copy(d[:n], s[:n])
	}
}

// CopyFrom overwrites b with src. Both buffers must have the same size.
func (b *Buf) CopyFrom(src *Buf) {
	copy(b.data, src.data)
}

// Crop returns a copy of the pixels inside r, clipped to the buffer.
// Returns nil if the clipped rectangle is empty.
func (b *Buf) Crop(r tilerender.Rect) *Buf {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return nil
	}
	out := MustNewBuf(r.Width, r.Height)
	out.CopyRect(b, r, tilerender.Point{})
	return out
}

// ToNRGBA converts the buffer to a standard library image.
// The returned image does not share memory with b.
func (b *Buf) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.data)
	return img
}

// IsEmpty returns true if the buffer has zero dimensions.
func (b *Buf) IsEmpty() bool {
	return b == nil || b.width == 0 || b.height == 0
}
