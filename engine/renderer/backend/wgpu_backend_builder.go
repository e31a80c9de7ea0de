package backend

// WGPUBackendOption is a functional option for configuring the WebGPU backend.
type WGPUBackendOption func(*wgpuBackendImpl)

// WithForceFallbackAdapter requests the software (fallback) adapter.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - WGPUBackendOption: a function that applies the adapter preference
func WithForceFallbackAdapter(force bool) WGPUBackendOption {
	return func(b *wgpuBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithDeviceLabel sets the debug label of the acquired device.
func WithDeviceLabel(label string) WGPUBackendOption {
	return func(b *wgpuBackendImpl) {
		if label != "" {
			b.deviceLabel = label
		}
	}
}
