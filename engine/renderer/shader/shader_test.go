package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litSource = `
@group(0) @binding(0) var<uniform> frame: FrameConstants;

@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
	return vec4<f32>(position, 1.0);
}

@fragment fn fs_lit() -> @location(0) vec4<f32> {
	return vec4<f32>(1.0);
}
`

func TestNewShaderFromSourceFindsStageEntryPoint(t *testing.T) {
	vs, err := NewShaderFromSource("lit_vs", ShaderTypeVertex, litSource)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, vs.ShaderType())

	fs, err := NewShaderFromSource("lit_fs", ShaderTypeFragment, litSource)
	require.NoError(t, err)
	assert.Equal(t, "fs_lit", fs.EntryPoint())
	assert.Equal(t, "lit_fs", fs.Module().Label)
}

func TestNewShaderFromSourceMissingEntryPoint(t *testing.T) {
	_, err := NewShaderFromSource("broken", ShaderTypeFragment, "@vertex fn vs() {}")
	assert.ErrorContains(t, err, "no @fragment entry point")
}

func TestNewShaderMissingFile(t *testing.T) {
	_, err := NewShader("missing", ShaderTypeVertex, filepath.Join(t.TempDir(), "nope.wgsl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewShaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lit.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(litSource), 0o644))

	s, err := NewShader("lit", ShaderTypeVertex, path)
	require.NoError(t, err)
	assert.Equal(t, litSource, s.Source())
}
