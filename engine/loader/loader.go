// Package loader decodes glTF and GLB files into vertex and index data the renderer uploads.
package loader

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/bismuth/engine/renderer/mesh"
)

// MeshData is the flattened geometry of one model file.
type MeshData struct {
	Name     string
	Vertices []mesh.Vertex
	Indices  []uint32
}

// DecodeError is returned when a file cannot be read as a model.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to load mesh %q: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.RWMutex

	cache map[string]*MeshData

	backend loaderBackend

	workers int
}

// Loader loads model files and caches the decoded geometry by name.
type Loader interface {
	// Load decodes the file at path, or returns the cached result for path.
	//
	// Parameters:
	//   - path: the .gltf or .glb file to load
	//
	// Returns:
	//   - *MeshData: the decoded geometry
	//   - error: a *DecodeError if the file could not be loaded
	Load(path string) (*MeshData, error)

	// LoadBytes decodes an in-memory file and caches it under name.
	//
	// Parameters:
	//   - name: the cache key
	//   - data: the file contents
	//
	// Returns:
	//   - *MeshData: the decoded geometry
	//   - error: a *DecodeError if the bytes could not be decoded
	LoadBytes(name string, data []byte) (*MeshData, error)

	// LoadAll loads several files in parallel and waits for all of them. Worker goroutines
	// live only for the duration of the call. Results are in the order of paths.
	//
	// Parameters:
	//   - paths: the files to load
	//
	// Returns:
	//   - []*MeshData: one entry per path, nil where loading failed
	//   - error: every failure joined, or nil
	LoadAll(paths ...string) ([]*MeshData, error)

	// Get returns a cached result.
	Get(name string) (*MeshData, bool)

	// Len returns the number of cached results.
	Len() int
}

var _ Loader = &loader{}

// NewLoader creates a glTF loader with the given options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:      &sync.RWMutex{},
		cache:   make(map[string]*MeshData),
		backend: newGLTFLoaderBackend(),
		workers: 4,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) cached(name string) (*MeshData, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	data, ok := l.cache[name]
	return data, ok
}

func (l *loader) store(name string, data *MeshData) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[name] = data
}

func (l *loader) Load(path string) (*MeshData, error) {
	if data, ok := l.cached(path); ok {
		return data, nil
	}
	data, err := l.backend.Open(path)
	if err != nil {
		return nil, err
	}
	l.store(path, data)
	return data, nil
}

func (l *loader) LoadBytes(name string, data []byte) (*MeshData, error) {
	if cached, ok := l.cached(name); ok {
		return cached, nil
	}
	decoded, err := l.backend.Decode(name, data)
	if err != nil {
		return nil, err
	}
	l.store(name, decoded)
	return decoded, nil
}

func (l *loader) LoadAll(paths ...string) ([]*MeshData, error) {
	results := make([]*MeshData, len(paths))
	errs := make([]error, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	// Each lane is a single-worker pool. Stop delivers worker ids over a channel shared by the
	// whole pool, so it only reliably stops a pool of one.
	lanes := make([]worker.DynamicWorkerPool, min(l.workers, len(paths)))
	for i := range lanes {
		lanes[i] = worker.NewDynamicWorkerPool(1, len(paths), time.Second)
	}
	defer func() {
		for _, lane := range lanes {
			lane.Stop()
		}
	}()

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		idx, p := i, path
		lanes[idx%len(lanes)].SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx], errs[idx] = l.Load(p)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return results, errors.Join(errs...)
}

func (l *loader) Get(name string) (*MeshData, bool) {
	return l.cached(name)
}

func (l *loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}
