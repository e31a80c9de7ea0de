// Package shader holds the renderer's WGSL program and validates WGSL sources offline.
package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

//go:embed assets/shader.wgsl
var defaultSource string

const (
	// VertexEntryPoint is the vertex stage entry point of the default shader.
	VertexEntryPoint = "vs_main"
	// FragmentEntryPoint is the fragment stage entry point of the default shader.
	FragmentEntryPoint = "fs_main"
)

// Shader is a WGSL module with one vertex and one fragment entry point.
type Shader struct {
	Label              string
	Source             string
	VertexEntryPoint   string
	FragmentEntryPoint string
}

// Default returns the mesh shader: camera uniform at group 0, material texture and sampler
// at group 1, per-vertex position/color/uv at locations 0-2 and the model matrix at 5-8.
func Default() Shader {
	return Shader{
		Label:              "Mesh Shader",
		Source:             defaultSource,
		VertexEntryPoint:   VertexEntryPoint,
		FragmentEntryPoint: FragmentEntryPoint,
	}
}

// Validate checks that both entry points are declared and compiles the source to SPIR-V with
// naga, so syntax and type errors surface before the GPU device sees the module.
//
// Returns:
//   - error: an error describing the first problem found
func (s Shader) Validate() error {
	if strings.TrimSpace(s.Source) == "" {
		return errors.New("shader source is empty")
	}
	for _, ep := range []string{s.VertexEntryPoint, s.FragmentEntryPoint} {
		if ep == "" {
			return fmt.Errorf("shader %q is missing an entry point name", s.Label)
		}
		if !strings.Contains(s.Source, "fn "+ep+"(") {
			return fmt.Errorf("shader %q does not declare entry point %q", s.Label, ep)
		}
	}
	if _, err := Compile(s.Source); err != nil {
		return fmt.Errorf("shader %q failed validation: %w", s.Label, err)
	}
	return nil
}

// Compile translates WGSL to SPIR-V bytes.
func Compile(source string) ([]byte, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compiler returned %d bytes of SPIR-V", len(spirv))
	}
	return spirv, nil
}
