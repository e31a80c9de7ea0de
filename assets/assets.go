// Package assets embeds the default material image and mesh shipped with the executable.
package assets

import _ "embed"

// DefaultTexture is a 64x64 checkerboard PNG used as the material when none is configured.
//
//go:embed texture.png
var DefaultTexture []byte

// DefaultMesh is a unit cube in glTF form with per-face vertex colors and texture
// coordinates. Its buffer is embedded as a data URI.
//
//go:embed cube.gltf
var DefaultMesh []byte

// DefaultMeshName is the name DefaultMesh is loaded under.
const DefaultMeshName = "cube.gltf"
