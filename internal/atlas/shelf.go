package atlas

import "github.com/gogpu/tilerender"

// Bin is one allocated rectangle inside a page.
type Bin struct {
	id   int
	rect tilerender.Rect

	// slot is the space reserved for the bin. It can be larger than rect
	// when a freed slot is reused for a smaller request.
	slot tilerender.Rect
	refs int
	page *Page
}

// ID returns a page-unique identifier.
func (b *Bin) ID() int { return b.id }

// Rect returns the bin rectangle in page coordinates.
func (b *Bin) Rect() tilerender.Rect { return b.rect }

// Page returns the page holding the bin.
func (b *Bin) Page() *Page { return b.page }

// Live reports whether the bin has not been released.
func (b *Bin) Live() bool { return b.refs > 0 }

// Packer implements shelf-based rectangle packing with slot reuse.
//
// Rectangles are placed left-to-right in horizontal shelves. A shelf is as
// tall as the tallest rectangle placed so far; only the last shelf can grow
// taller, and a new shelf is never taller than the tallest existing one.
// Released slots go to a free list and are handed out again, best fit
// first, before any new shelf space is used. Live bins never move.
type Packer struct {
	width   int
	height  int
	shelves []shelf
	free    []tilerender.Rect

	nextID   int
	live     int
	usedArea int
}

// shelf represents a horizontal strip in the page.
type shelf struct {
	y      int // Y position of shelf top
	height int // Height of the shelf (tallest item so far)
	x      int // Next free X position
}

// NewPacker creates a packer for a width×height area.
func NewPacker(width, height int) *Packer {
	return &Packer{
		width:   width,
		height:  height,
		shelves: make([]shelf, 0, 16),
	}
}

// Pack reserves a w×h rectangle. It returns nil when nothing fits.
func (p *Packer) Pack(w, h int) *Bin {
	if w <= 0 || h <= 0 || w > p.width || h > p.height {
		return nil
	}
	if slot, ok := p.takeFree(w, h); ok {
		return p.newBin(tilerender.R(slot.X, slot.Y, w, h), slot)
	}
	if r, ok := p.packShelf(w, h); ok {
		return p.newBin(r, r)
	}
	return nil
}

// takeFree removes and returns the free slot wasting the least area.
func (p *Packer) takeFree(w, h int) (tilerender.Rect, bool) {
	best := -1
	bestWaste := 0
	for i, s := range p.free {
		if s.Width < w || s.Height < h {
			continue
		}
		waste := s.Width*s.Height - w*h
		if best < 0 || waste < bestWaste {
			best, bestWaste = i, waste
		}
	}
	if best < 0 {
		return tilerender.Rect{}, false
	}
	slot := p.free[best]
	p.free = append(p.free[:best], p.free[best+1:]...)
	return slot, true
}

func (p *Packer) packShelf(w, h int) (tilerender.Rect, bool) {
	for i := range p.shelves {
		s := &p.shelves[i]
		if s.x+w > p.width {
			continue
		}
		if h > s.height {
			// Only the last shelf may grow, and only into free space below.
			if i != len(p.shelves)-1 || s.y+h > p.height {
				continue
			}
			s.height = h
		}
		r := tilerender.R(s.x, s.y, w, h)
		s.x += w
		return r, true
	}

	newY := 0
	if len(p.shelves) > 0 {
		// A new shelf may not be taller than the tallest one so far. Tall
		// requests go to a fresh page instead of stranding the short rows.
		tallest := 0
		for _, s := range p.shelves {
			tallest = max(tallest, s.height)
		}
		if h > tallest {
			return tilerender.Rect{}, false
		}
		last := p.shelves[len(p.shelves)-1]
		newY = last.y + last.height
	}
	if newY+h > p.height {
		return tilerender.Rect{}, false
	}
	p.shelves = append(p.shelves, shelf{y: newY, height: h, x: w})
	return tilerender.R(0, newY, w, h), true
}

func (p *Packer) newBin(r, slot tilerender.Rect) *Bin {
	p.nextID++
	p.live++
	p.usedArea += r.Width * r.Height
	return &Bin{id: p.nextID, rect: r, slot: slot, refs: 1}
}

// Unref drops one reference to b and returns the remaining count. At zero
// the slot is returned to the free list. When the last live bin goes away
// the packer starts over with an empty page.
func (p *Packer) Unref(b *Bin) int {
	if b.refs <= 0 {
		panic("atlas: bin released twice")
	}
	b.refs--
	if b.refs > 0 {
		return b.refs
	}
	p.live--
	p.usedArea -= b.rect.Width * b.rect.Height
	if p.live == 0 {
		p.Reset()
		return 0
	}
	p.free = append(p.free, b.slot)
	return 0
}

// Ref adds a reference to a live bin.
func (p *Packer) Ref(b *Bin) {
	if b.refs <= 0 {
		panic("atlas: ref on released bin")
	}
	b.refs++
}

// Reset forgets all shelves and free slots. Bins still referencing the
// packer must not be used afterwards.
func (p *Packer) Reset() {
	p.shelves = p.shelves[:0]
	p.free = p.free[:0]
	p.live = 0
	p.usedArea = 0
}

// LiveBins returns the number of live bins.
func (p *Packer) LiveBins() int { return p.live }

// UsedArea returns the total area of live bins.
func (p *Packer) UsedArea() int { return p.usedArea }

// TotalArea returns the packable area.
func (p *Packer) TotalArea() int { return p.width * p.height }

// Utilization returns the fraction of the area covered by live bins.
func (p *Packer) Utilization() float64 {
	if p.width <= 0 || p.height <= 0 {
		return 0
	}
	return float64(p.usedArea) / float64(p.TotalArea())
}

// ShelfCount returns the number of shelves currently in use.
func (p *Packer) ShelfCount() int { return len(p.shelves) }

// FreeSlots returns the number of released slots awaiting reuse.
func (p *Packer) FreeSlots() int { return len(p.free) }
