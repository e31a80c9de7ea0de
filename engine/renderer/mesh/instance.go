package mesh

import (
	"github.com/Carmen-Shannon/bismuth/common"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// Instance places a shared mesh in the scene with its own model matrix. The GPU copy of the
// transform is refreshed by Sync after SetTransform marks it dirty.
type Instance struct {
	mesh      Handle
	transform [16]float32
	buffer    backend.Buffer
	dirty     bool
}

// NewInstance allocates a 64-byte instance buffer initialised to transform.
//
// Parameters:
//   - b: the backend to allocate on
//   - label: debug label for the instance buffer
//   - mesh: handle of the mesh to draw
//   - transform: column-major model matrix
//
// Returns:
//   - *Instance: the new instance
//   - error: an error if the buffer could not be created or written
func NewInstance(b backend.Backend, label string, mesh Handle, transform [16]float32) (*Instance, error) {
	buf, err := upload(b, label+" Instance Buffer", wgpu.BufferUsageVertex, common.SliceToBytes(transform[:]))
	if err != nil {
		return nil, err
	}
	return &Instance{mesh: mesh, transform: transform, buffer: buf}, nil
}

// Mesh returns the handle of the mesh this instance draws.
func (i *Instance) Mesh() Handle { return i.mesh }

// Transform returns the CPU copy of the model matrix.
func (i *Instance) Transform() [16]float32 { return i.transform }

// Buffer returns the per-instance GPU buffer.
func (i *Instance) Buffer() backend.Buffer { return i.buffer }

// SetTransform replaces the model matrix. The GPU copy is updated before the next draw.
func (i *Instance) SetTransform(m [16]float32) {
	i.transform = m
	i.dirty = true
}

// Dirty reports whether the GPU copy is stale.
func (i *Instance) Dirty() bool { return i.dirty }

// Sync writes the transform to the GPU buffer if it changed since the last sync.
//
// Parameters:
//   - b: the backend that owns the buffer
//
// Returns:
//   - error: an error if the write failed; the instance stays dirty
func (i *Instance) Sync(b backend.Backend) error {
	if !i.dirty || i.buffer == nil {
		return nil
	}
	if err := b.WriteBuffer(i.buffer, 0, common.SliceToBytes(i.transform[:])); err != nil {
		return err
	}
	i.dirty = false
	return nil
}

// Release frees the instance buffer.
func (i *Instance) Release() {
	if i.buffer != nil {
		i.buffer.Release()
		i.buffer = nil
	}
}
