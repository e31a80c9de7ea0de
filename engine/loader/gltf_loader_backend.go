package loader

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/bismuth/engine/renderer/mesh"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	attrPosition = "POSITION"
	attrColor    = "COLOR_0"
	attrTexCoord = "TEXCOORD_0"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend implementation for glTF and GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Open(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &DecodeError{Name: path, Err: err}
	}
	return extractMeshData(path, doc)
}

func (b *gltfLoaderBackendImpl) Decode(name string, data []byte) (*MeshData, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	return extractMeshData(name, doc)
}

// extractMeshData concatenates every triangle primitive of every mesh in doc. Indices of each
// primitive are offset by the number of vertices emitted before it.
func extractMeshData(name string, doc *gltf.Document) (*MeshData, error) {
	if len(doc.Meshes) == 0 {
		return nil, &DecodeError{Name: name, Err: errors.New("document contains no meshes")}
	}

	out := &MeshData{Name: name}
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				log.Printf("[Loader] %s: skipping mesh %d primitive %d with mode %v", name, mi, pi, prim.Mode)
				continue
			}
			vertices, indices, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, &DecodeError{Name: name, Err: fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)}
			}
			base := uint32(len(out.Vertices))
			for _, idx := range indices {
				out.Indices = append(out.Indices, base+idx)
			}
			out.Vertices = append(out.Vertices, vertices...)
		}
	}
	if len(out.Vertices) == 0 {
		return nil, &DecodeError{Name: name, Err: errors.New("document contains no triangle geometry")}
	}
	return out, nil
}

// readPrimitive reads one primitive. Missing colors default to white, missing texture
// coordinates to zero, and missing indices to the vertices in order.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]mesh.Vertex, []uint32, error) {
	posIdx, ok := prim.Attributes[attrPosition]
	if !ok {
		return nil, nil, errors.New("no POSITION attribute")
	}
	if posIdx >= len(doc.Accessors) {
		return nil, nil, fmt.Errorf("POSITION accessor %d out of range", posIdx)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}

	var colors [][3]float32
	if idx, ok := prim.Attributes[attrColor]; ok && idx < len(doc.Accessors) {
		if colors, err = readColors(doc, doc.Accessors[idx]); err != nil {
			return nil, nil, fmt.Errorf("colors: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[attrTexCoord]; ok && idx < len(doc.Accessors) {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, nil, fmt.Errorf("texture coordinates: %w", err)
		}
	}

	vertices := make([]mesh.Vertex, len(positions))
	for i, p := range positions {
		v := mesh.Vertex{Position: p, Color: mesh.White}
		if i < len(colors) {
			v.Color = colors[i]
		}
		if i < len(uvs) {
			v.UV = uvs[i]
		}
		vertices[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		if *prim.Indices >= len(doc.Accessors) {
			return nil, nil, fmt.Errorf("index accessor %d out of range", *prim.Indices)
		}
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, nil, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(vertices) {
				return nil, nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(vertices))
			}
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return vertices, indices, nil
}

// readColors reads COLOR_0 as linear RGB. Normalized integer components are scaled to [0, 1];
// alpha is dropped.
func readColors(doc *gltf.Document, acr *gltf.Accessor) ([][3]float32, error) {
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, err
	}
	var out [][3]float32
	switch c := data.(type) {
	case [][3]float32:
		return c, nil
	case [][4]float32:
		for _, v := range c {
			out = append(out, [3]float32{v[0], v[1], v[2]})
		}
	case [][3]uint8:
		for _, v := range c {
			out = append(out, normalized(float32(v[0]), float32(v[1]), float32(v[2]), 255))
		}
	case [][4]uint8:
		for _, v := range c {
			out = append(out, normalized(float32(v[0]), float32(v[1]), float32(v[2]), 255))
		}
	case [][3]uint16:
		for _, v := range c {
			out = append(out, normalized(float32(v[0]), float32(v[1]), float32(v[2]), 65535))
		}
	case [][4]uint16:
		for _, v := range c {
			out = append(out, normalized(float32(v[0]), float32(v[1]), float32(v[2]), 65535))
		}
	default:
		return nil, fmt.Errorf("unsupported accessor %v %v", acr.Type, acr.ComponentType)
	}
	return out, nil
}

func normalized(r, g, b, scale float32) [3]float32 {
	return [3]float32{r / scale, g / scale, b / scale}
}
