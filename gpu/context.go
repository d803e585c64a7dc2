package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// ContextDevice creates textures through a host-provided
// gpucontext.TextureCreator.
type ContextDevice struct {
	creator gpucontext.TextureCreator
}

// NewContextDevice wraps creator.
func NewContextDevice(creator gpucontext.TextureCreator) *ContextDevice {
	return &ContextDevice{creator: creator}
}

// NewTexture implements Device.
func (d *ContextDevice) NewTexture(label string, width, height int) (Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	tex, err := d.creator.NewTextureFromRGBA(width, height, make([]byte, width*height*4))
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", label, err)
	}
	return &contextTexture{tex: tex, width: width, height: height}, nil
}

type contextTexture struct {
	tex       gpucontext.Texture
	width     int
	height    int
	destroyed bool
}

func (t *contextTexture) Width() int  { return t.width }
func (t *contextTexture) Height() int { return t.height }

// UpdateRegion prefers a region upload and falls back to a full upload
// when the region covers the whole texture.
func (t *contextTexture) UpdateRegion(x, y, w, h int, data []byte) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if err := checkRegion(t.width, t.height, x, y, w, h, data); err != nil {
		return err
	}
	if ru, ok := t.tex.(gpucontext.TextureRegionUpdater); ok {
		return ru.UpdateRegion(x, y, w, h, data)
	}
	if fu, ok := t.tex.(gpucontext.TextureUpdater); ok && x == 0 && y == 0 && w == t.width && h == t.height {
		return fu.UpdateData(data)
	}
	return ErrRegionUpdateUnsupported
}

func (t *contextTexture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if d, ok := t.tex.(interface{ Destroy() }); ok {
		d.Destroy()
	}
}
