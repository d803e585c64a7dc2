// Package gpu mirrors atlas pages and static images into GPU textures.
//
// Pixels are always produced on the CPU side first. A Device only has to
// create RGBA8 textures and accept region uploads, which keeps hosts free
// to supply whichever GPU stack they already run:
//
//   - [HALDevice] drives a wgpu HAL device directly (Vulkan, Metal, DX12,
//     GLES or the noop backend in tests).
//   - [ContextDevice] goes through a host's gpucontext.TextureCreator, for
//     example a gogpu window.
//
// HALDevice can also draw vertex batches between its own textures with
// [HALDevice.DrawBatch], which hosts use to present surfaces.
//
// Usage:
//
//	dev, err := gpu.NewHALDevice(openDev.Device, openDev.Queue)
//	if err != nil {
//	    return err
//	}
//	ctx := surface.NewContext(surface.WithDevice(dev))
package gpu

import (
	"errors"

	"github.com/gogpu/gpucontext"
)

// Errors returned by devices and textures.
var (
	// ErrInvalidSize is returned when a texture or region has no area or
	// does not fit the texture.
	ErrInvalidSize = errors.New("gpu: invalid texture size")

	// ErrDataSize is returned when upload data does not match the region.
	ErrDataSize = errors.New("gpu: data length does not match region")

	// ErrDestroyed is returned when uploading to a destroyed texture.
	ErrDestroyed = errors.New("gpu: texture destroyed")

	// ErrRegionUpdateUnsupported is returned by ContextDevice textures whose
	// host texture accepts neither region nor full uploads.
	ErrRegionUpdateUnsupported = errors.New("gpu: texture does not support updates")
)

// Texture is a GPU-resident RGBA8 texture.
type Texture interface {
	gpucontext.Texture
	gpucontext.TextureRegionUpdater

	// Destroy releases the texture. Further uploads fail with ErrDestroyed.
	Destroy()
}

// Device creates textures.
type Device interface {
	// NewTexture creates a zero-initialized width×height RGBA8 texture.
	NewTexture(label string, width, height int) (Texture, error)
}

// checkRegion validates an upload against a texture of size tw×th.
func checkRegion(tw, th, x, y, w, h int, data []byte) error {
	if w <= 0 || h <= 0 || x < 0 || y < 0 || x+w > tw || y+h > th {
		return ErrInvalidSize
	}
	if len(data) != w*h*4 {
		return ErrDataSize
	}
	return nil
}
