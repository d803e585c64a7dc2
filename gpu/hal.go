package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilerender"
)

// HALDevice creates textures on a wgpu HAL device and uploads through its
// queue.
//
// Its textures can also be drawn into with DrawBatch. The batch shader
// module, sampler and render pipelines are created on first use.
type HALDevice struct {
	device hal.Device
	queue  hal.Queue

	shader  hal.ShaderModule
	sampler hal.Sampler
	batch   batchResources
}

// NewHALDevice wraps an open HAL device.
func NewHALDevice(device hal.Device, queue hal.Queue) (*HALDevice, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("gpu: nil device or queue")
	}
	return &HALDevice{device: device, queue: queue}, nil
}

// NewTexture implements Device.
func (d *HALDevice) NewTexture(label string, width, height int) (Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:     label,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create texture view %q: %w", label, err)
	}
	tilerender.Logger().Debug("gpu: texture created", "label", label, "width", width, "height", height)
	return &halTexture{dev: d, tex: tex, view: view, width: width, height: height}, nil
}

// Pipeline returns the batch shader module and sampler, creating them on
// first use.
func (d *HALDevice) Pipeline() (hal.ShaderModule, hal.Sampler, error) {
	if d.shader != nil {
		return d.shader, d.sampler, nil
	}
	spirv, err := CompileShader(BatchShaderWGSL)
	if err != nil {
		return nil, nil, err
	}
	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "tilerender batch shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: create shader module: %w", err)
	}
	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "tilerender nearest sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
		Anisotropy:   1,
	})
	if err != nil {
		d.device.DestroyShaderModule(shader)
		return nil, nil, fmt.Errorf("gpu: create sampler: %w", err)
	}
	d.shader, d.sampler = shader, sampler
	return shader, sampler, nil
}

// Close releases the pipelines, shader module and sampler. Textures must
// be destroyed by their owners.
func (d *HALDevice) Close() {
	d.closeBatch()
	if d.sampler != nil {
		d.device.DestroySampler(d.sampler)
		d.sampler = nil
	}
	if d.shader != nil {
		d.device.DestroyShaderModule(d.shader)
		d.shader = nil
	}
}

type halTexture struct {
	dev    *HALDevice
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
}

func (t *halTexture) Width() int  { return t.width }
func (t *halTexture) Height() int { return t.height }

// View returns the texture view used to bind the texture.
func (t *halTexture) View() hal.TextureView { return t.view }

func (t *halTexture) UpdateRegion(x, y, w, h int, data []byte) error {
	if t.tex == nil {
		return ErrDestroyed
	}
	if err := checkRegion(t.width, t.height, x, y, w, h, data); err != nil {
		return err
	}
	err := t.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y)},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			BytesPerRow:  uint32(w * 4),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("gpu: write texture: %w", err)
	}
	return nil
}

func (t *halTexture) UpdateData(data []byte) error {
	return t.UpdateRegion(0, 0, t.width, t.height, data)
}

func (t *halTexture) Destroy() {
	if t.tex == nil {
		return
	}
	t.dev.device.DestroyTextureView(t.view)
	t.dev.device.DestroyTexture(t.tex)
	t.tex, t.view = nil, nil
}
