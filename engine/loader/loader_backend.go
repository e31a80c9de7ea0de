package loader

// loaderBackend decodes one model file format into flat mesh data.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Open decodes the file at path. External resources are resolved relative to it.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *MeshData: the merged geometry of every mesh in the file
	//   - error: a *DecodeError if the file is not a usable model
	Open(path string) (*MeshData, error)

	// Decode decodes an in-memory model. Only self-contained files (embedded or binary
	// buffers) can be decoded this way.
	//
	// Parameters:
	//   - name: the name reported in errors and stored on the result
	//   - data: the file contents
	//
	// Returns:
	//   - *MeshData: the merged geometry of every mesh in the file
	//   - error: a *DecodeError if the bytes are not a usable model
	Decode(name string, data []byte) (*MeshData, error)
}
