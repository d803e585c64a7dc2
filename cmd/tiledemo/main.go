// Command tiledemo renders a generated tile map layer through the tile
// region cache and writes the last frame as a PNG.
//
// With -gpu, atlas pages are mirrored on the wgpu noop backend and every
// frame is presented into a screen texture with a batch draw.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/gpu"
	"github.com/gogpu/tilerender/internal/atlas"
	"github.com/gogpu/tilerender/metrics"
	"github.com/gogpu/tilerender/surface"
	"github.com/gogpu/tilerender/tiles"
	"github.com/gogpu/tilerender/vertex"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const (
	tileSize  = 16
	tileCount = 8
	blockSize = 4 * tileSize
)

func main() {
	var (
		width       = flag.Int("width", 640, "camera width")
		height      = flag.Int("height", 360, "camera height")
		frames      = flag.Int("frames", 60, "number of frames to render")
		tilesetPath = flag.String("tileset", "", "tileset PNG, a row of 16x16 tiles (generated when empty)")
		output      = flag.String("output", "tiledemo.png", "output file")
		background  = flag.String("background", "#10141c", "frame clear color as #rgb, #rgba, #rrggbb or #rrggbbaa")
		seed        = flag.Uint64("seed", 1, "random seed for the generated map")
		verbose     = flag.Bool("v", false, "log debug output to stderr")
		showMetrics = flag.Bool("metrics", false, "print metrics in text format after rendering")
		useGPU      = flag.Bool("gpu", false, "mirror pages and present frames on the wgpu noop backend")
	)
	flag.Parse()

	if *width <= 0 || *height <= 0 || *frames <= 0 {
		log.Fatalf("width, height and frames must be positive")
	}
	if *verbose {
		tilerender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	pageSize := max(atlas.DefaultPageSize, *width, *height)
	opts := []surface.Option{surface.WithPageSize(pageSize)}
	if *tilesetPath != "" {
		opts = append(opts, surface.WithImageSource(surface.FSSource{FS: os.DirFS(filepath.Dir(*tilesetPath))}))
	}
	var screen *presenter
	if *useGPU {
		dev, closeDev, err := openNoopDevice()
		if err != nil {
			log.Fatalf("Failed to open GPU device: %v", err)
		}
		defer closeDev()
		screen, err = newPresenter(dev, *width, *height)
		if err != nil {
			log.Fatalf("Failed to create screen texture: %v", err)
		}
		defer screen.close()
		opts = append(opts, surface.WithDevice(dev))
	}
	bg := tilerender.Hex(*background)
	ctx := surface.NewContext(opts...)
	defer ctx.Close()

	var tilesImg *surface.Surface
	if *tilesetPath != "" {
		var err error
		tilesImg, err = ctx.Load(filepath.Base(*tilesetPath))
		if err != nil {
			log.Fatalf("Failed to load tileset: %v", err)
		}
	} else {
		tilesImg = generateTileset(ctx)
	}
	count := max(tilesImg.Width()/tileSize, 1)

	m := &demoMap{
		size:    tilerender.Sz(*width*4, *height*2),
		camera:  &tiles.FixedCamera{Box: tilerender.R(0, 0, *width, *height)},
		target:  ctx.NewSurface(*width, *height),
		tileset: tilesImg,
	}

	layer := tiles.New(m, 0)
	populate(layer, m.size, count, rand.New(rand.NewPCG(*seed, *seed)))
	if rejected := layer.Build(); len(rejected) > 0 {
		log.Printf("%d tiles rejected", len(rejected))
	}

	spanX := m.size.Width - *width
	spanY := m.size.Height - *height
	div := max(*frames-1, 1)
	for i := range *frames {
		m.camera.MoveTo(tilerender.Pt(spanX*i/div, spanY*i/div))
		m.target.Clear()
		m.target.FillWithColor(bg)
		layer.DrawOnMap()
		if screen != nil {
			if err := screen.present(m.target); err != nil {
				log.Fatalf("Failed to present frame %d: %v", i, err)
			}
		}
	}

	if err := writePNG(*output, m.target); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	s := layer.Stats()
	log.Printf("Demo saved to %s (%dx%d, %d frames, %d cell builds, %d cell draws)\n",
		*output, *width, *height, *frames, s.CellBuilds, s.CellDraws)

	if *showMetrics {
		if err := printMetrics(metrics.NewCollector(ctx, layer)); err != nil {
			log.Fatalf("Failed to print metrics: %v", err)
		}
	}
}

type demoMap struct {
	size    tilerender.Size
	camera  *tiles.FixedCamera
	target  *surface.Surface
	tileset *surface.Surface
}

func (m *demoMap) Size() tilerender.Size { return m.size }
func (m *demoMap) Camera() tiles.Camera { return m.camera }
func (m *demoMap) CameraSurface() *surface.Surface { return m.target }
func (m *demoMap) Tileset() tiles.Tileset { return m }
func (m *demoMap) TilesImage() *surface.Surface { return m.tileset }

// generateTileset paints a row of tiles with evenly spaced hues and seals
// it into a static surface.
func generateTileset(ctx *surface.Context) *surface.Surface {
	canvas := ctx.NewSurface(tileCount*tileSize, tileSize)
	defer canvas.Release()

	hsv := func(h, s, v float64) tilerender.Color {
		return tilerender.FromColor(colorful.Hsv(h, s, v))
	}
	for i := range tileCount {
		hue := 360 * float64(i) / tileCount
		x := i * tileSize
		canvas.FillRect(tilerender.R(x, 0, tileSize, tileSize), hsv(hue, 0.6, 0.55))
		canvas.FillRect(tilerender.R(x+2, 2, tileSize-4, tileSize-4), hsv(hue, 0.45, 0.9))
	}
	return canvas.Seal()
}

func tileRect(i int) tilerender.Rect {
	return tilerender.R(i*tileSize, 0, tileSize, tileSize)
}

// populate scatters blocks over the layer, with a scrolling strip along the
// bottom and a parallax backdrop behind everything.
func populate(c *tiles.Cache, size tilerender.Size, count int, rnd *rand.Rand) {
	c.AddTile(tiles.TileInfo{
		Pattern: tiles.ParallaxPattern{Source: tileRect(0)},
		Box:     tilerender.R(0, 0, size.Width, size.Height),
	})
	for y := 0; y < size.Height-2*tileSize; y += blockSize {
		for x := 0; x < size.Width; x += blockSize {
			if rnd.IntN(3) != 0 {
				continue
			}
			c.AddTile(tiles.TileInfo{
				Pattern: tiles.SimplePattern{Source: tileRect(1 + rnd.IntN(max(count-1, 1)))},
				Box:     tilerender.R(x, y, blockSize, blockSize),
			})
		}
	}
	c.AddTile(tiles.TileInfo{
		Pattern: tiles.SelfScrollingPattern{Source: tileRect(count - 1)},
		Box:     tilerender.R(0, size.Height-2*tileSize, size.Width, 2*tileSize),
	})
}

func openNoopDevice() (*gpu.HALDevice, func(), error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, nil, err
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, fmt.Errorf("no noop adapter")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, err
	}
	dev, err := gpu.NewHALDevice(openDev.Device, openDev.Queue)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, nil, err
	}
	return dev, func() {
		dev.Close()
		openDev.Device.Destroy()
		instance.Destroy()
	}, nil
}

// presenter copies camera frames into a screen-sized texture, the way a
// windowed host would present them.
type presenter struct {
	dev    *gpu.HALDevice
	screen gpu.Texture
	quad   *vertex.Batch
}

func newPresenter(dev *gpu.HALDevice, width, height int) (*presenter, error) {
	screen, err := dev.NewTexture("tiledemo screen", width, height)
	if err != nil {
		return nil, err
	}
	return &presenter{dev: dev, screen: screen, quad: vertex.NewBatch(vertex.QuadVertices)}, nil
}

func (p *presenter) present(frame *surface.Surface) error {
	tex, region := frame.GPUTexture()
	if tex == nil {
		return fmt.Errorf("frame %v has no GPU texture", frame)
	}
	p.quad.Reset()
	p.quad.AddQuad(frame.Bounds(), region, tilerender.White)
	return p.dev.DrawBatch(p.screen, tex, p.quad.Vertices(), tilerender.BlendNone)
}

func (p *presenter) close() { p.screen.Destroy() }

func writePNG(path string, s *surface.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, s.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printMetrics(c prometheus.Collector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
