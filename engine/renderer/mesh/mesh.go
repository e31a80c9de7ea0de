// Package mesh holds GPU geometry: immutable meshes, per-instance transforms, and the arena
// that lets many instances share one mesh.
package mesh

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/bismuth/common"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// Mesh is an immutable vertex buffer and u32 index buffer uploaded once at creation.
// An empty mesh owns no buffers and draws nothing.
type Mesh struct {
	label        string
	vertexBuffer backend.Buffer
	indexBuffer  backend.Buffer
	vertexCount  uint32
	indexCount   uint32
}

// New uploads vertices and indices into buffers sized exactly to the input. Index values are
// not checked against the vertex count.
//
// Parameters:
//   - b: the backend to allocate on
//   - label: debug label for the buffers
//   - vertices: the vertex data
//   - indices: triangle-list indices into vertices
//
// Returns:
//   - *Mesh: the uploaded mesh
//   - error: an error if either buffer could not be created or written
func New(b backend.Backend, label string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	if uint64(len(indices)) > math.MaxUint32 || uint64(len(vertices)) > math.MaxUint32 {
		return nil, fmt.Errorf("mesh %q is too large: %d vertices, %d indices", label, len(vertices), len(indices))
	}
	m := &Mesh{
		label:       label,
		vertexCount: uint32(len(vertices)),
		indexCount:  uint32(len(indices)),
	}

	var err error
	if len(vertices) > 0 {
		m.vertexBuffer, err = upload(b, label+" Vertex Buffer", wgpu.BufferUsageVertex, common.SliceToBytes(vertices))
		if err != nil {
			return nil, err
		}
	}
	if len(indices) > 0 {
		m.indexBuffer, err = upload(b, label+" Index Buffer", wgpu.BufferUsageIndex, common.SliceToBytes(indices))
		if err != nil {
			m.Release()
			return nil, err
		}
	}
	return m, nil
}

func upload(b backend.Backend, label string, usage wgpu.BufferUsage, data []byte) (backend.Buffer, error) {
	buf, err := b.CreateBuffer(backend.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	if err := b.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, fmt.Errorf("failed to upload %q: %w", label, err)
	}
	return buf, nil
}

// Label returns the debug label the mesh buffers were created with.
func (m *Mesh) Label() string { return m.label }

// VertexBuffer returns the vertex buffer, or nil for a mesh without vertices.
func (m *Mesh) VertexBuffer() backend.Buffer { return m.vertexBuffer }

// IndexBuffer returns the index buffer, or nil for a mesh without indices.
func (m *Mesh) IndexBuffer() backend.Buffer { return m.indexBuffer }

// IndexCount returns the number of indices the mesh was created with.
func (m *Mesh) IndexCount() uint32 { return m.indexCount }

// VertexCount returns the number of vertices the mesh was created with.
func (m *Mesh) VertexCount() uint32 { return m.vertexCount }

// Drawable reports whether the mesh has both buffers and at least one index.
func (m *Mesh) Drawable() bool {
	return m.indexCount > 0 && m.vertexBuffer != nil && m.indexBuffer != nil
}

// Release frees both buffers.
func (m *Mesh) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
}
