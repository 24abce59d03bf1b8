//go:build windows

package webgpu

import "strings"

// workgroupSize is the thread count per workgroup for 1-D kernels.
const workgroupSize = 256

// binaryShaderTemplate is the element-wise binary kernel. Operands are
// addressed through per-dimension strides, so size-1 dimensions
// broadcast with stride 0 and the same-shape case is just matching
// strides. OP is replaced with the operator expression over av and bv.
const binaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    out_strides: vec4<u32>,
    a_strides: vec4<u32>,
    b_strides: vec4<u32>,
    size: u32,
    rank: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx >= params.size) {
        return;
    }
    var rem = idx;
    var ia = 0u;
    var ib = 0u;
    for (var d = 0u; d < params.rank; d = d + 1u) {
        let coord = rem / params.out_strides[d];
        rem = rem % params.out_strides[d];
        ia = ia + coord * params.a_strides[d];
        ib = ib + coord * params.b_strides[d];
    }
    let av = a[ia];
    let bv = b[ib];
    result[idx] = OP;
}
`

// unaryShaderTemplate is the element-wise unary kernel. params.scalar
// carries the operand of scalar ops and is ignored by the pure math
// functions. OP is replaced with an expression over v.
const unaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    scalar: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx >= params.size) {
        return;
    }
    let v = input[idx];
    result[idx] = OP;
}
`

func binaryShader(expr string) string {
	return strings.ReplaceAll(binaryShaderTemplate, "OP", expr)
}

func unaryShader(expr string) string {
	return strings.ReplaceAll(unaryShaderTemplate, "OP", expr)
}

var (
	addShader = binaryShader("av + bv")
	subShader = binaryShader("av - bv")
	mulShader = binaryShader("av * bv")
	divShader = binaryShader("av / bv")

	expShader   = unaryShader("exp(v)")
	logShader   = unaryShader("log(v)")
	sqrtShader  = unaryShader("sqrt(v)")
	rsqrtShader = unaryShader("inverseSqrt(v)")
	siluShader  = unaryShader("v / (1.0 + exp(-v))")
	// WGSL has no erf intrinsic; GELU uses the tanh approximation.
	geluShader = unaryShader("0.5 * v * (1.0 + tanh(0.7978845608 * (v + 0.044715 * v * v * v)))")

	addScalarShader = unaryShader("v + params.scalar")
	subScalarShader = unaryShader("v - params.scalar")
	mulScalarShader = unaryShader("v * params.scalar")
	divScalarShader = unaryShader("v / params.scalar")
	clampMinShader  = unaryShader("max(v, params.scalar)")
	leakyReLUShader = unaryShader("select(params.scalar * v, v, v >= 0.0)")
)

// matmulShader computes C = A @ B with one thread per output element in
// 16x16 tiles. A is [batch, M, K]; B is [K, N] shared across the batch
// when b_stride is 0, or [batch, K, N] when b_stride is K*N. The
// workgroup z axis indexes the batch.
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    m: u32,
    k: u32,
    n: u32,
    b_stride: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;
    let batch = global_id.z;
    if (row >= params.m || col >= params.n) {
        return;
    }

    let a_base = (batch * params.m + row) * params.k;
    let b_base = batch * params.b_stride;
    var sum: f32 = 0.0;
    for (var p = 0u; p < params.k; p = p + 1u) {
        sum = sum + a[a_base + p] * b[b_base + p * params.n + col];
    }
    result[(batch * params.m + row) * params.n + col] = sum;
}
`

// conv1dShader convolves input [batch, inCh, time] with weights
// [outCh, inCh/groups, kSize], one thread per output element. Tap
// positions are computed in i32 so padding can reach below zero.
const conv1dShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read> weights: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    batch: u32,
    in_ch: u32,
    time_in: u32,
    out_ch: u32,
    k_size: u32,
    out_t: u32,
    stride: u32,
    padding: u32,
    dilation: u32,
    groups: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx >= params.batch * params.out_ch * params.out_t) {
        return;
    }
    let ot = idx % params.out_t;
    let oc = (idx / params.out_t) % params.out_ch;
    let bi = idx / (params.out_t * params.out_ch);

    let in_per_group = params.in_ch / params.groups;
    let out_per_group = params.out_ch / params.groups;
    let ic_start = (oc / out_per_group) * in_per_group;
    let kern_base = oc * in_per_group * params.k_size;

    var sum: f32 = 0.0;
    for (var ic = 0u; ic < in_per_group; ic = ic + 1u) {
        let in_base = (bi * params.in_ch + ic_start + ic) * params.time_in;
        let k_base = kern_base + ic * params.k_size;
        for (var kx = 0u; kx < params.k_size; kx = kx + 1u) {
            let it = i32(ot * params.stride + kx * params.dilation) - i32(params.padding);
            if (it >= 0 && it < i32(params.time_in)) {
                sum = sum + input[in_base + u32(it)] * weights[k_base + kx];
            }
        }
    }
    result[idx] = sum;
}
`

// reduceShader collapses the middle axis of an [outer, dim, inner]
// view, one thread per output element. mean != 0 divides by the
// reduced length.
const reduceShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    outer: u32,
    dim_size: u32,
    inner: u32,
    mean: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx >= params.outer * params.inner) {
        return;
    }
    let o = idx / params.inner;
    let i = idx % params.inner;

    let base = o * params.dim_size * params.inner + i;
    var sum: f32 = 0.0;
    for (var d = 0u; d < params.dim_size; d = d + 1u) {
        sum = sum + input[base + d * params.inner];
    }
    if (params.mean != 0u) {
        sum = sum / f32(params.dim_size);
    }
    result[idx] = sum;
}
`

// embeddingShader gathers one weight row per token. Indices are
// range-checked on the host before dispatch.
const embeddingShader = `
@group(0) @binding(0) var<storage, read> weights: array<f32>;
@group(0) @binding(1) var<storage, read> indices: array<i32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    count: u32,
    dim: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= params.count) {
        return;
    }
    let src = u32(indices[i]) * params.dim;
    let dst = i * params.dim;
    for (var d = 0u; d < params.dim; d = d + 1u) {
        result[dst + d] = weights[src + d];
    }
}
`
