package backend

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuFrame struct {
	backend *wgpuBackendImpl

	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder

	pass      *wgpuRenderPass
	submitted bool
}

var _ Frame = &wgpuFrame{}

func (f *wgpuFrame) BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error) {
	if f.encoder == nil || f.submitted {
		return nil, errors.New("frame has already been submitted")
	}
	if f.pass != nil && !f.pass.ended {
		return nil, errors.New("a render pass is already open on this frame")
	}

	rp := &wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       f.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: desc.ClearColor,
			},
		},
	}
	if desc.DepthView != nil {
		depth, ok := asWGPUTextureView(desc.DepthView)
		if !ok {
			return nil, errors.New("depth view was not created by this backend or has been released")
		}
		rp.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: desc.DepthClearValue,
		}
	}

	f.pass = &wgpuRenderPass{pass: f.encoder.BeginRenderPass(rp)}
	return f.pass, nil
}

func (f *wgpuFrame) Submit() error {
	if f.encoder == nil || f.submitted {
		return errors.New("frame has already been submitted")
	}
	if f.pass != nil && !f.pass.ended {
		return errors.New("render pass must end before the frame is submitted")
	}
	f.backend.mu.Lock()
	defer f.backend.mu.Unlock()

	commandBuffer, err := f.encoder.Finish(nil)
	f.encoder.Release()
	f.encoder = nil
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	f.backend.queue.Submit(commandBuffer)
	commandBuffer.Release()
	f.submitted = true
	return nil
}

func (f *wgpuFrame) Present() {
	f.backend.mu.Lock()
	defer f.backend.mu.Unlock()

	if f.texture == nil || !f.submitted {
		return
	}
	f.backend.surface.Present()
}

func (f *wgpuFrame) Release() {
	f.backend.mu.Lock()
	defer f.backend.mu.Unlock()
	f.releaseLocked()
}

// releaseLocked frees the frame's native objects. Caller must hold the backend mutex.
func (f *wgpuFrame) releaseLocked() {
	if f.encoder != nil {
		f.encoder.Release()
		f.encoder = nil
	}
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
	if f.backend.frame == f {
		f.backend.frame = nil
	}
}

type wgpuRenderPass struct {
	pass  *wgpu.RenderPassEncoder
	ended bool
}

var _ RenderPass = &wgpuRenderPass{}

func (p *wgpuRenderPass) SetPipeline(pl RenderPipeline) {
	if native, ok := asWGPURenderPipeline(pl); ok {
		p.pass.SetPipeline(native)
	}
}

func (p *wgpuRenderPass) SetBindGroup(index uint32, group BindGroup) {
	if native, ok := asWGPUBindGroup(group); ok {
		p.pass.SetBindGroup(index, native, nil)
	}
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buf Buffer) {
	if native, ok := asWGPUBuffer(buf); ok {
		p.pass.SetVertexBuffer(slot, native, 0, wgpu.WholeSize)
	}
}

func (p *wgpuRenderPass) SetIndexBuffer(buf Buffer, format wgpu.IndexFormat) {
	if native, ok := asWGPUBuffer(buf); ok {
		p.pass.SetIndexBuffer(native, format, 0, wgpu.WholeSize)
	}
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuRenderPass) End() error {
	if p.ended {
		return errors.New("render pass already ended")
	}
	p.pass.End()
	p.pass.Release()
	p.ended = true
	return nil
}
