package mesh

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// Vertex is the packed per-vertex record uploaded to the vertex buffer (32 bytes).
type Vertex struct {
	Position [3]float32 // location 0
	Color    [3]float32 // location 1
	UV       [2]float32 // location 2
}

// VertexSize is the stride of Vertex in bytes.
const VertexSize = uint64(unsafe.Sizeof(Vertex{}))

// InstanceSize is the stride of one model matrix (four vec4 columns) in bytes.
const InstanceSize = uint64(16 * 4)

// White is the default vertex color.
var White = [3]float32{1, 1, 1}

// VertexLayout returns the buffer layout for Vertex, stepped per vertex.
//
// Returns:
//   - wgpu.VertexBufferLayout: stride 32, attributes at locations 0, 1 and 2
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// InstanceLayout returns the buffer layout for a column-major model matrix, stepped per
// instance. The four columns occupy shader locations 5 through 8.
//
// Returns:
//   - wgpu.VertexBufferLayout: stride 64, four Float32x4 attributes
func InstanceLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 4)
	for i := range attrs {
		attrs[i] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(i * 16),
			ShaderLocation: uint32(5 + i),
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: InstanceSize,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}
