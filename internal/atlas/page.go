package atlas

import (
	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/gpu"
	"github.com/gogpu/tilerender/internal/image"
)

// Page is one fixed-size atlas page.
//
// Views draw into the back buffer. Reads go through the front buffer,
// which is refreshed from the back buffer on demand, so a view can sample
// pixels of its own page while drawing into it.
type Page struct {
	index  int
	size   int
	packer *Packer

	back  *image.Buf
	front *image.Buf
	dirty bool

	// mirror is the GPU copy of the front buffer. Nil without a device.
	mirror gpu.Texture

	flushes int
}

// Index returns the page position in creation order.
func (p *Page) Index() int { return p.index }

// Size returns the page edge length in pixels.
func (p *Page) Size() int { return p.size }

// Dirty reports whether the back buffer has changes not yet flushed.
func (p *Page) Dirty() bool { return p.dirty }

// Packer returns the page packer.
func (p *Page) Packer() *Packer { return p.packer }

// Mirror returns the GPU texture mirroring the page, or nil.
func (p *Page) Mirror() gpu.Texture { return p.mirror }

// Flushes returns how many back-to-front copies the page has performed.
func (p *Page) Flushes() int { return p.flushes }

// markDirty records a write to the back buffer.
func (p *Page) markDirty() { p.dirty = true }

// flush copies the whole back buffer into the front buffer and uploads it
// to the mirror texture.
func (p *Page) flush() {
	if !p.dirty {
		return
	}
	p.front.CopyFrom(p.back)
	p.dirty = false
	p.flushes++

	if p.mirror != nil {
		if err := p.mirror.UpdateRegion(0, 0, p.size, p.size, p.front.Data()); err != nil {
			tilerender.Logger().Warn("atlas: page mirror upload failed",
				"page", p.index, "err", err)
		}
	}
	tilerender.Logger().Debug("atlas: page flushed", "page", p.index, "flushes", p.flushes)
}

// release returns the buffers to pool and destroys the mirror.
func (p *Page) release(pool *image.Pool) {
	pool.Put(p.back)
	pool.Put(p.front)
	p.back, p.front = nil, nil
	if p.mirror != nil {
		p.mirror.Destroy()
		p.mirror = nil
	}
}
