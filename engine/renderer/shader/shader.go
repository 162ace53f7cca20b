package shader

import (
	"fmt"
	"os"
	"regexp"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader program runs in.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage program.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage program, paired with a vertex program.
	ShaderTypeFragment
)

// String returns the WGSL attribute name of the stage.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

var entryPointPatterns = map[ShaderType]*regexp.Regexp{
	ShaderTypeVertex:   regexp.MustCompile(`@vertex\s+fn\s+([A-Za-z_][A-Za-z0-9_]*)`),
	ShaderTypeFragment: regexp.MustCompile(`@fragment\s+fn\s+([A-Za-z_][A-Za-z0-9_]*)`),
}

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	entryPoint string
}

// Shader is a loaded WGSL program for one pipeline stage. Bind group layouts are fixed by the
// renderer, so a program only needs its source and the entry point for its stage.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint retrieves the name of the function marked with the stage attribute.
	//
	// Returns:
	//   - string: the entry point function name
	EntryPoint() string

	// ShaderType retrieves the stage of this shader.
	//
	// Returns:
	//   - ShaderType: vertex or fragment
	ShaderType() ShaderType

	// Module builds the descriptor used to create the GPU shader module.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the WGSL module descriptor
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader loads a WGSL program from a file.
//
// Parameters:
//   - key: the unique identifier for the shader
//   - shaderType: the stage the program is used for
//   - sourcePath: the path of the .wgsl file
//
// Returns:
//   - Shader: the loaded shader
//   - error: error if the file cannot be read or has no entry point for the stage
func NewShader(key string, shaderType ShaderType, sourcePath string) (Shader, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read source file %q: %w", key, sourcePath, err)
	}
	return NewShaderFromSource(key, shaderType, string(data))
}

// NewShaderFromSource creates a program from WGSL source already in memory.
//
// Parameters:
//   - key: the unique identifier for the shader
//   - shaderType: the stage the program is used for
//   - source: the WGSL source
//
// Returns:
//   - Shader: the shader
//   - error: error if the source has no entry point for the stage
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	pattern, ok := entryPointPatterns[shaderType]
	if !ok {
		return nil, fmt.Errorf("shader %s: unknown shader type %v", key, shaderType)
	}
	match := pattern.FindStringSubmatch(source)
	if match == nil {
		return nil, fmt.Errorf("shader %s: no @%s entry point found", key, shaderType)
	}
	return &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
		entryPoint: match[1],
	}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
}
