// Package atlas packs render targets into fixed-size pages.
//
// An [Allocator] owns a growable list of square pages. Each page is split
// among many logical render targets by a shelf [Packer]. A [View] is the
// handle onto one such rectangle: draws go to the page back buffer and
// reads come from the front buffer, flushed lazily on the first read after
// a write.
//
// Live bins never move. Space is reclaimed when a bin is released (its
// slot becomes reusable within the page) and when a page holds no live
// bins at all (see [Allocator.ReleaseEmptyPages]).
//
// The allocator is not safe for concurrent use. One render thread owns it
// together with every page and view it hands out.
package atlas

import (
	"fmt"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/gpu"
	"github.com/gogpu/tilerender/internal/image"
)

// DefaultPageSize is the edge length of an atlas page.
const DefaultPageSize = 1024

// Option configures an Allocator.
type Option func(*options)

type options struct {
	pageSize int
	device   gpu.Device
	pool     *image.Pool
}

func defaultOptions() options {
	return options{pageSize: DefaultPageSize}
}

// WithPageSize sets the page edge length. Values <= 0 are ignored.
func WithPageSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithDevice mirrors every page into a texture created by dev.
func WithDevice(dev gpu.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithPool recycles page buffers through pool.
func WithPool(pool *image.Pool) Option {
	return func(o *options) {
		o.pool = pool
	}
}

// Stats is a snapshot of allocator occupancy.
type Stats struct {
	Pages     int
	LiveBins  int
	UsedArea  int
	TotalArea int
	Flushes   int
}

// Utilization returns UsedArea / TotalArea, or 0 with no pages.
func (s Stats) Utilization() float64 {
	if s.TotalArea == 0 {
		return 0
	}
	return float64(s.UsedArea) / float64(s.TotalArea)
}

// Allocator hands out rectangles from a growable list of pages.
type Allocator struct {
	opts   options
	pages  []*Page
	closed bool

	// flushes counts copies done by pages that were since released.
	flushes int
}

// New creates an allocator with no pages. Pages are created on demand.
func New(opts ...Option) *Allocator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.pool == nil {
		o.pool = image.NewPool(2)
	}
	return &Allocator{opts: o}
}

// PageSize returns the page edge length.
func (a *Allocator) PageSize() int { return a.opts.pageSize }

// Pages returns the current pages in creation order.
func (a *Allocator) Pages() []*Page {
	return a.pages
}

// Allocate reserves a w×h rectangle. Pages are tried in creation order and
// a new page is created when none has room.
//
// Allocate panics if the size is not positive, exceeds the page size, the
// allocator is closed, or a mirror texture cannot be created.
func (a *Allocator) Allocate(w, h int) (*Page, *Bin) {
	if a.closed {
		tilerender.Fatal("atlas: allocate on closed allocator")
	}
	if w <= 0 || h <= 0 || w > a.opts.pageSize || h > a.opts.pageSize {
		tilerender.Fatal("atlas: requested size does not fit a page",
			"width", w, "height", h, "page_size", a.opts.pageSize)
	}

	for _, p := range a.pages {
		if b := p.packer.Pack(w, h); b != nil {
			b.page = p
			return p, b
		}
	}

	p := a.newPage()
	b := p.packer.Pack(w, h)
	if b == nil {
		tilerender.Fatal("atlas: fresh page rejected allocation",
			"width", w, "height", h)
	}
	b.page = p
	return p, b
}

func (a *Allocator) newPage() *Page {
	size := a.opts.pageSize
	p := &Page{
		index:  len(a.pages),
		size:   size,
		packer: NewPacker(size, size),
		back:   a.opts.pool.Get(size, size),
		front:  a.opts.pool.Get(size, size),
	}
	if p.back == nil || p.front == nil {
		tilerender.Fatal("atlas: page buffer allocation failed", "page_size", size)
	}
	if a.opts.device != nil {
		tex, err := a.opts.device.NewTexture(fmt.Sprintf("atlas_page_%d", p.index), size, size)
		if err != nil {
			tilerender.Fatal("atlas: page texture creation failed",
				"page", p.index, "err", err)
		}
		p.mirror = tex
	}
	a.pages = append(a.pages, p)
	tilerender.Logger().Debug("atlas: page created", "page", p.index, "size", size)
	return p
}

// Release drops the allocation reference held on b. It does nothing once
// the allocator is closed.
func (a *Allocator) Release(b *Bin) {
	if a.closed {
		return
	}
	if b.page == nil {
		tilerender.Fatal("atlas: release of unowned bin", "bin", b.id)
	}
	b.page.packer.Unref(b)
}

// NewView allocates a w×h rectangle and returns a cleared view onto it.
func (a *Allocator) NewView(w, h int) *View {
	p, b := a.Allocate(w, h)
	v := &View{alloc: a, page: p, bin: b}
	v.Clear()
	return v
}

// Stats returns current occupancy.
func (a *Allocator) Stats() Stats {
	s := Stats{Pages: len(a.pages), Flushes: a.flushes}
	for _, p := range a.pages {
		s.LiveBins += p.packer.LiveBins()
		s.UsedArea += p.packer.UsedArea()
		s.TotalArea += p.packer.TotalArea()
		s.Flushes += p.flushes
	}
	return s
}

// ReleaseEmptyPages frees every page without live bins and returns how
// many were freed. Remaining pages keep their order but are re-indexed.
func (a *Allocator) ReleaseEmptyPages() int {
	kept := a.pages[:0]
	freed := 0
	for _, p := range a.pages {
		if p.packer.LiveBins() > 0 {
			p.index = len(kept)
			kept = append(kept, p)
			continue
		}
		a.flushes += p.flushes
		p.release(a.opts.pool)
		freed++
	}
	clear(a.pages[len(kept):])
	a.pages = kept
	if freed > 0 {
		tilerender.Logger().Debug("atlas: released empty pages", "count", freed, "remaining", len(kept))
	}
	return freed
}

// Close frees every page. Views still alive must not be used afterwards.
func (a *Allocator) Close() {
	if a.closed {
		return
	}
	for _, p := range a.pages {
		a.flushes += p.flushes
		p.release(a.opts.pool)
	}
	a.pages = nil
	a.closed = true
}
