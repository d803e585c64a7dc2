package gpu

import (
	"fmt"

	"github.com/gogpu/naga"
)

// BatchShaderWGSL draws vertex batches: pixel-space positions and texel
// coordinates are normalized with the target and texture sizes, and each
// texel is modulated by the vertex color.
const BatchShaderWGSL = `
struct BatchUniforms {
    target_size: vec2<f32>,
    texture_size: vec2<f32>,
}

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) tex_coords: vec2<f32>,
    @location(2) color: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> uniforms: BatchUniforms;
@group(0) @binding(1) var batch_texture: texture_2d<f32>;
@group(0) @binding(2) var batch_sampler: sampler;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let ndc = in.position / uniforms.target_size * 2.0 - vec2<f32>(1.0, 1.0);
    out.position = vec4<f32>(ndc.x, -ndc.y, 0.0, 1.0);
    out.uv = in.tex_coords / uniforms.texture_size;
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(batch_texture, batch_sampler, in.uv) * in.color;
}
`

// CompileShader compiles WGSL source to SPIR-V words.
func CompileShader(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
