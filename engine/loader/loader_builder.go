package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets how many files LoadAll decodes at once. Values below 1 are ignored.
//
// Parameters:
//   - n: the maximum number of concurrent decodes
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithMeshData pre-populates the cache, e.g. with procedurally built geometry.
//
// Parameters:
//   - name: the cache key
//   - data: the geometry to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cache entry to a loader
func WithMeshData(name string, data *MeshData) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[name] = data
	}
}
