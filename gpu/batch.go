package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilerender"
	"github.com/gogpu/tilerender/vertex"
)

// ErrForeignTexture is returned by DrawBatch for textures that were not
// created by the same HALDevice.
var ErrForeignTexture = errors.New("gpu: texture belongs to another device")

const (
	// batchVertexStride is position (2), tex coords (2) and color (4) as f32.
	batchVertexStride = 8 * 4

	// batchUniformSize is target_size and texture_size, two vec2<f32>.
	batchUniformSize = 16
)

// batchResources are the device objects shared by all batch draws.
type batchResources struct {
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[tilerender.BlendMode]hal.RenderPipeline
}

// DrawBatch draws the triangles in verts into target, sampling source.
// Positions are target pixels and texture coordinates are source texels,
// as in a vertex.Batch. Both textures must come from d.
//
// The draw is submitted and waited for before DrawBatch returns.
func (d *HALDevice) DrawBatch(target, source Texture, verts []vertex.Vertex, mode tilerender.BlendMode) error {
	if len(verts) == 0 {
		return nil
	}
	dst, ok := target.(*halTexture)
	if !ok || dst.dev != d {
		return ErrForeignTexture
	}
	src, ok := source.(*halTexture)
	if !ok || src.dev != d {
		return ErrForeignTexture
	}
	if dst.tex == nil || src.tex == nil {
		return ErrDestroyed
	}

	pipeline, err := d.renderPipeline(mode)
	if err != nil {
		return err
	}

	vertBuf, err := d.uploadBuffer("tilerender batch vertices", encodeVertices(verts),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer d.device.DestroyBuffer(vertBuf)

	uniforms := encodeUniforms(dst.width, dst.height, src.width, src.height)
	uniformBuf, err := d.uploadBuffer("tilerender batch uniforms", uniforms,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer d.device.DestroyBuffer(uniformBuf)

	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "tilerender batch bind",
		Layout: d.batch.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: batchUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: src.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: d.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bindGroup)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "tilerender batch"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("tilerender batch"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "tilerender batch pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    dst.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.Draw(uint32(len(verts)), 1, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	// The per-draw buffers are destroyed on return.
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("gpu: wait for batch: %w", err)
	}
	tilerender.Logger().Debug("gpu: batch drawn", "vertices", len(verts), "blend", mode)
	return nil
}

// renderPipeline returns the batch pipeline for mode, creating the shared
// layouts and the pipeline on first use.
func (d *HALDevice) renderPipeline(mode tilerender.BlendMode) (hal.RenderPipeline, error) {
	if p, ok := d.batch.pipelines[mode]; ok {
		return p, nil
	}
	shader, _, err := d.Pipeline()
	if err != nil {
		return nil, err
	}

	if d.batch.layout == nil {
		layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label: "tilerender batch layout",
			Entries: []gputypes.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: gputypes.ShaderStageVertex,
					Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
				},
				{
					Binding:    1,
					Visibility: gputypes.ShaderStageFragment,
					Texture: &gputypes.TextureBindingLayout{
						SampleType:    gputypes.TextureSampleTypeFloat,
						ViewDimension: gputypes.TextureViewDimension2D,
					},
				},
				{
					Binding:    2,
					Visibility: gputypes.ShaderStageFragment,
					Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: create bind group layout: %w", err)
		}
		pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            "tilerender batch pipeline layout",
			BindGroupLayouts: []hal.BindGroupLayout{layout},
		})
		if err != nil {
			d.device.DestroyBindGroupLayout(layout)
			return nil, fmt.Errorf("gpu: create pipeline layout: %w", err)
		}
		d.batch.layout, d.batch.pipeLayout = layout, pipeLayout
		d.batch.pipelines = make(map[tilerender.BlendMode]hal.RenderPipeline)
	}

	state := mode.State()
	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "tilerender batch " + mode.String(),
		Layout: d.batch.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: batchVertexStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    gputypes.TextureFormatRGBA8Unorm,
				Blend:     &state,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create render pipeline %s: %w", mode, err)
	}
	d.batch.pipelines[mode] = pipeline
	return pipeline, nil
}

func (d *HALDevice) closeBatch() {
	for mode, p := range d.batch.pipelines {
		d.device.DestroyRenderPipeline(p)
		delete(d.batch.pipelines, mode)
	}
	if d.batch.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.batch.pipeLayout)
		d.batch.pipeLayout = nil
	}
	if d.batch.layout != nil {
		d.device.DestroyBindGroupLayout(d.batch.layout)
		d.batch.layout = nil
	}
}

func (d *HALDevice) uploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("gpu: write %s: %w", label, err)
	}
	return buf, nil
}

// encodeVertices packs verts in the batch vertex layout. Colors are
// normalized to 0-1.
func encodeVertices(verts []vertex.Vertex) []byte {
	buf := make([]byte, len(verts)*batchVertexStride)
	for i, v := range verts {
		b := buf[i*batchVertexStride:]
		putFloats(b,
			v.Position.X, v.Position.Y,
			v.TexCoords.X, v.TexCoords.Y,
			float32(v.Color.R)/255, float32(v.Color.G)/255,
			float32(v.Color.B)/255, float32(v.Color.A)/255,
		)
	}
	return buf
}

func encodeUniforms(tw, th, sw, sh int) []byte {
	buf := make([]byte, batchUniformSize)
	putFloats(buf, float32(tw), float32(th), float32(sw), float32(sh))
	return buf
}

func putFloats(buf []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}
