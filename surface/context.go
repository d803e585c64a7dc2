// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	stdimage "image"
	"io/fs"
	"os"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/gpu"
	"github.com/gogpu/tilerender/internal/atlas"
	"github.com/gogpu/tilerender/internal/cache"
	"github.com/gogpu/tilerender/internal/image"
	"github.com/gogpu/tilerender/vertex"
)

// DefaultImageCacheSize is the number of decoded images kept by Load.
const DefaultImageCacheSize = 64

// Option configures a Context.
type Option func(*options)

type options struct {
	pageSize  int
	device    gpu.Device
	source    ImageSource
	cacheSize int
}

func defaultOptions() options {
	return options{
		pageSize:  atlas.DefaultPageSize,
		cacheSize: DefaultImageCacheSize,
	}
}

// WithPageSize sets the atlas page edge length (default 1024).
// Dynamic surfaces cannot be larger than a page.
func WithPageSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithDevice mirrors atlas pages and static images into GPU textures.
func WithDevice(dev gpu.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithImageSource sets where Load reads files from.
// The default reads from the current working directory.
func WithImageSource(src ImageSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithImageCacheSize sets how many decoded images Load keeps.
// Zero disables the limit.
func WithImageCacheSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.cacheSize = n
		}
	}
}

// Context owns the atlas shared by its surfaces.
type Context struct {
	opts   options
	alloc  *atlas.Allocator
	pool   *image.Pool
	images *cache.LRU[string, *image.Buf]
	reg    registry

	// quad and scratch hold vertices for one draw at a time.
	quad    *vertex.Batch
	scratch []vertex.Vertex

	closed bool
}

// NewContext creates a context with an empty atlas.
func NewContext(opts ...Option) *Context {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = FSSource{FS: os.DirFS(".")}
	}

	pool := image.NewPool(4)
	aopts := []atlas.Option{atlas.WithPageSize(o.pageSize), atlas.WithPool(pool)}
	if o.device != nil {
		aopts = append(aopts, atlas.WithDevice(o.device))
	}
	c := &Context{
		opts:   o,
		alloc:  atlas.New(aopts...),
		pool:   pool,
		images: cache.NewLRU[string, *image.Buf](o.cacheSize),
		reg:    newRegistry(),
		quad:   vertex.NewBatch(vertex.QuadVertices),
	}
	tilerender.Logger().Info("surface: context created",
		"page_size", o.pageSize, "gpu", o.device != nil)
	return c
}

func (c *Context) checkOpen() {
	if c.closed {
		tilerender.Fatal("surface: context used after close")
	}
}

// NewSurface creates a transparent dynamic surface.
// It panics if a side is not positive or exceeds the page size.
func (c *Context) NewSurface(width, height int) *Surface {
	c.checkOpen()
	checkSize(width, height)
	return c.newSurface(&renderTarget{view: c.alloc.NewView(width, height)})
}

// NewDeferred creates a transparent surface that records draw operations
// instead of rasterizing them.
func (c *Context) NewDeferred(width, height int) *Surface {
	c.checkOpen()
	checkSize(width, height)
	return c.newSurface(&drawList{dims: tilerender.Sz(width, height), ctx: c})
}

// NewSurfaceFromImage creates a static surface holding a copy of img.
func (c *Context) NewSurfaceFromImage(img stdimage.Image) (*Surface, error) {
	c.checkOpen()
	buf, err := image.FromStdImage(img)
	if err != nil {
		return nil, err
	}
	return c.newStatic(buf, "image"), nil
}

func (c *Context) newStatic(buf *image.Buf, label string) *Surface {
	return c.newSurface(newStaticTexture(c, buf, label))
}

// Load creates a static surface from an image file. Decoded images are
// cached by name; surfaces loaded from the same name share pixels until
// one of them is modified.
//
// Missing files yield ErrAssetNotFound and undecodable ones ErrAssetDecode.
func (c *Context) Load(name string) (*Surface, error) {
	if c.closed {
		return nil, ErrContextClosed
	}
	buf, err := c.images.GetOrLoad(name, func() (*image.Buf, error) {
		return c.decode(name)
	})
	if err != nil {
		tilerender.Logger().Warn("surface: load failed", "name", name, "err", err)
		return nil, err
	}
	return c.newStatic(buf, name), nil
}

func (c *Context) decode(name string) (*image.Buf, error) {
	r, err := c.opts.source.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
		}
		return nil, fmt.Errorf("surface: open %s: %w", name, err)
	}
	defer r.Close()

	buf, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetDecode, name, err)
	}
	tilerender.Logger().Debug("surface: image decoded", "name", name, "format", format,
		"width", buf.Width(), "height", buf.Height())
	return buf, nil
}

// Lookup returns the live surface with the given ID.
func (c *Context) Lookup(id ID) (*Surface, bool) {
	return c.reg.get(id)
}

// Surfaces returns the IDs of all live surfaces in creation order.
func (c *Context) Surfaces() []ID {
	return c.reg.ids()
}

// AtlasStats describes atlas occupancy.
type AtlasStats struct {
	Pages     int
	LiveBins  int
	UsedArea  int
	TotalArea int
	Flushes   int
}

// Utilization returns the fraction of page area covered by live surfaces.
func (s AtlasStats) Utilization() float64 {
	if s.TotalArea == 0 {
		return 0
	}
	return float64(s.UsedArea) / float64(s.TotalArea)
}

// AtlasStats returns current atlas occupancy.
func (c *Context) AtlasStats() AtlasStats {
	s := c.alloc.Stats()
	return AtlasStats{
		Pages:     s.Pages,
		LiveBins:  s.LiveBins,
		UsedArea:  s.UsedArea,
		TotalArea: s.TotalArea,
		Flushes:   s.Flushes,
	}
}

// ImageCacheStats returns hit counters of the decoded-image cache.
func (c *Context) ImageCacheStats() cache.Stats {
	return c.images.Stats()
}

// ReleaseEmptyPages frees atlas pages no surface uses any more and
// returns how many were freed. Live surfaces never move.
func (c *Context) ReleaseEmptyPages() int {
	return c.alloc.ReleaseEmptyPages()
}

// Close releases every live surface and the atlas.
func (c *Context) Close() {
	if c.closed {
		return
	}
	for _, id := range c.reg.ids() {
		if s, ok := c.reg.get(id); ok {
			s.Release()
		}
	}
	c.alloc.Close()
	c.images.Clear()
	c.closed = true
	tilerender.Logger().Info("surface: context closed")
}

// translated copies verts into the context scratch slice with positions
// moved by pos and texture coordinates by uv.
func (c *Context) translated(verts []vertex.Vertex, pos, uv tilerender.Point) []vertex.Vertex {
	out := c.scratch[:0]
	p, t := vertex.V2(pos), vertex.V2(uv)
	for _, v := range verts {
		v.Position = v.Position.Add(p)
		v.TexCoords = v.TexCoords.Add(t)
		out = append(out, v)
	}
	c.scratch = out
	return out
}

func checkSize(w, h int) {
	if w <= 0 || h <= 0 {
		tilerender.Fatal("surface: attempt to create a surface with an empty size",
			"width", w, "height", h)
	}
}
