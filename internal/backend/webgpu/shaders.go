//go:build windows

package webgpu

// tiledMatmulShader computes C = A @ B with A [M, K], B [K, N], C [M, N].
//
// One 16x16 workgroup owns a 32x32 tile of C and each invocation produces a
// 2x2 micro-tile. A and B are staged through workgroup memory in k-slices of
// 16; out-of-range elements load as zero so ragged edges need no special case.
const tiledMatmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> c: array<f32>;

struct Params {
    M: u32,
    N: u32,
    K: u32,
    pad: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

const TILE: u32 = 32u;
const TK: u32 = 16u;

var<workgroup> tileA: array<f32, 512>; // TILE x TK
var<workgroup> tileB: array<f32, 512>; // TK x TILE

@compute @workgroup_size(16, 16)
fn main(@builtin(workgroup_id) wg: vec3<u32>, @builtin(local_invocation_id) lid: vec3<u32>) {
    let row0 = wg.y * TILE + lid.y * 2u;
    let col0 = wg.x * TILE + lid.x * 2u;
    let flat = lid.y * 16u + lid.x;

    var acc00: f32 = 0.0;
    var acc01: f32 = 0.0;
    var acc10: f32 = 0.0;
    var acc11: f32 = 0.0;

    for (var t: u32 = 0u; t < params.K; t = t + TK) {
        for (var s: u32 = 0u; s < 2u; s = s + 1u) {
            let idx = flat + s * 256u;

            let ar = wg.y * TILE + idx / TK;
            let ak = t + idx % TK;
            var av: f32 = 0.0;
            if (ar < params.M && ak < params.K) {
                av = a[ar * params.K + ak];
            }
            tileA[idx] = av;

            let bk = t + idx / TILE;
            let bc = wg.x * TILE + idx % TILE;
            var bv: f32 = 0.0;
            if (bk < params.K && bc < params.N) {
                bv = b[bk * params.N + bc];
            }
            tileB[idx] = bv;
        }
        workgroupBarrier();

        for (var kk: u32 = 0u; kk < TK; kk = kk + 1u) {
            let a0 = tileA[(lid.y * 2u) * TK + kk];
            let a1 = tileA[(lid.y * 2u + 1u) * TK + kk];
            let b0 = tileB[kk * TILE + lid.x * 2u];
            let b1 = tileB[kk * TILE + lid.x * 2u + 1u];
            acc00 = acc00 + a0 * b0;
            acc01 = acc01 + a0 * b1;
            acc10 = acc10 + a1 * b0;
            acc11 = acc11 + a1 * b1;
        }
        workgroupBarrier();
    }

    if (row0 < params.M) {
        if (col0 < params.N) {
            c[row0 * params.N + col0] = acc00;
        }
        if (col0 + 1u < params.N) {
            c[row0 * params.N + col0 + 1u] = acc01;
        }
    }
    if (row0 + 1u < params.M) {
        if (col0 < params.N) {
            c[(row0 + 1u) * params.N + col0] = acc10;
        }
        if (col0 + 1u < params.N) {
            c[(row0 + 1u) * params.N + col0 + 1u] = acc11;
        }
    }
}
`
