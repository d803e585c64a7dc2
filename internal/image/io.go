package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	// Registered decoders for image.Decode.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("image: empty data")

// Decode decodes an image from r, auto-detecting the format.
// Supported formats: PNG, JPEG, GIF, BMP, TIFF, WebP.
func Decode(r io.Reader) (*Buf, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("image: decode: %w", err)
	}
	buf, err := FromStdImage(img)
	if err != nil {
		return nil, format, err
	}
	return buf, format, nil
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte) (*Buf, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	buf, _, err := Decode(bytes.NewReader(data))
	return buf, err
}

// EncodePNG encodes the buffer as PNG to w.
func (b *Buf) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToNRGBA()); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

// FromStdImage converts a standard library image to a straight-alpha Buf.
func FromStdImage(img image.Image) (*Buf, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	buf, err := NewBuf(width, height)
	if err != nil {
		return nil, err
	}

	// Fast path: already straight RGBA8.
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := range height {
			start := (y+bounds.Min.Y-nrgba.Rect.Min.Y)*nrgba.Stride + (bounds.Min.X-nrgba.Rect.Min.X)*4
			copy(buf.RowBytes(y), nrgba.Pix[start:start+width*4])
		}
		return buf, nil
	}

	for y := range height {
		row := buf.RowBytes(y)
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = c.R, c.G, c.B, c.A
		}
	}
	return buf, nil
}
