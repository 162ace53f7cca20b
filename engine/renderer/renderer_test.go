package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct{}

func (fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (fakeSurface) Width() int                                 { return 800 }
func (fakeSurface) Height() int                                { return 600 }

type drawRecord struct {
	key      string
	pass     pipeline.Pass
	offsets  DrawOffsets
	textures [MaxTextureSlots]common.TextureHandle
}

type fakeBackend struct {
	frame, model, object bind_group_provider.BindGroupProvider

	registered   int
	draws        []drawRecord
	configured   [][2]int
	presentModes []PresentMode
	presented    int
	aborted      int
	released     bool
	frameErr     error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		frame:  bind_group_provider.NewBindGroupProvider("Frame", FrameBlockSize),
		model:  bind_group_provider.NewBindGroupProvider("Model", ModelBlockSize),
		object: bind_group_provider.NewBindGroupProvider("Object", ObjectBlockSize),
	}
}

func (f *fakeBackend) ConfigureSurface(width, height int) {
	f.configured = append(f.configured, [2]int{width, height})
}
func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentModes = append(f.presentModes, mode) }
func (f *fakeBackend) UniformProviders() (frame, model, object bind_group_provider.BindGroupProvider) {
	return f.frame, f.model, f.object
}
func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	f.registered++
	return nil
}
func (f *fakeBackend) InitMeshBuffers(string, []byte, []byte, int) (common.MeshHandle, error) {
	return 1, nil
}
func (f *fakeBackend) ReleaseMesh(common.MeshHandle) {}
func (f *fakeBackend) InitTexture(common.TextureStagingData) (common.TextureHandle, error) {
	return 1, nil
}
func (f *fakeBackend) ReleaseTexture(common.TextureHandle)    {}
func (f *fakeBackend) BeginShadowPass(int) error              { return nil }
func (f *fakeBackend) EndShadowPass()                         {}
func (f *fakeBackend) BeginFrame([4]float32) error            { return f.frameErr }
func (f *fakeBackend) SetViewport(float32, float32, float32, float32) {}
func (f *fakeBackend) DrawCall(p pipeline.Pipeline, mesh common.MeshHandle, offsets DrawOffsets, textures [MaxTextureSlots]common.TextureHandle, sampler state.SamplerMode) {
	f.draws = append(f.draws, drawRecord{key: p.PipelineKey(), pass: p.Pass(), offsets: offsets, textures: textures})
}
func (f *fakeBackend) EndFrame() {
	for _, p := range []bind_group_provider.BindGroupProvider{f.frame, f.model, f.object} {
		p.Reset()
	}
}
func (f *fakeBackend) AbortFrame() {
	f.aborted++
	f.EndFrame()
}
func (f *fakeBackend) Present() { f.presented++ }
func (f *fakeBackend) Release() { f.released = true }

func testBundle(t *testing.T) *state.Bundle {
	t.Helper()
	vs, err := shader.NewShaderFromSource("vs", shader.ShaderTypeVertex, "@vertex fn vs_main() {}")
	require.NoError(t, err)
	fs, err := shader.NewShaderFromSource("fs", shader.ShaderTypeFragment, "@fragment fn fs_main() {}")
	require.NoError(t, err)
	b, err := state.NewRegistry().CreateBundle("lit", state.WithVertexProgram(vs), state.WithFragmentProgram(fs))
	require.NoError(t, err)
	return b
}

func newTestRenderer(t *testing.T) (Renderer, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	r, err := NewRenderer(BackendTypeWGPU, fakeSurface{}, withBackend(fb))
	require.NoError(t, err)
	return r, fb
}

func TestNewRendererConfiguresSurface(t *testing.T) {
	r, fb := newTestRenderer(t)
	assert.Equal(t, [][2]int{{800, 600}}, fb.configured)
	assert.Equal(t, []PresentMode{PresentModeVSync}, fb.presentModes)
	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestDrawReadsLastWrittenBlocks(t *testing.T) {
	r, fb := newTestRenderer(t)
	b := testBundle(t)

	require.NoError(t, r.BeginFrame([4]float32{}))
	r.WriteFrameConstants([]byte{1})
	r.BindState(b)
	r.BindTexture(0, 7)
	r.WriteObjectConstants([]byte{1})
	r.DrawMesh(1, common.IdentityMatrix())
	r.WriteObjectConstants([]byte{2})
	r.BindTexture(1, 8)
	r.DrawMesh(1, common.IdentityMatrix())
	r.EndFrame()

	require.Len(t, fb.draws, 2)
	assert.Equal(t, DrawOffsets{Frame: 0, Model: 0, Object: 0}, fb.draws[0].offsets)
	assert.Equal(t, DrawOffsets{Frame: 0, Model: 256, Object: 256}, fb.draws[1].offsets)
	assert.Equal(t, common.TextureHandle(7), fb.draws[0].textures[0])
	assert.Equal(t, common.TextureHandle(0), fb.draws[0].textures[1])
	assert.Equal(t, common.TextureHandle(8), fb.draws[1].textures[1])
	assert.Equal(t, 1, fb.registered)
}

func TestPipelinesCachedPerPass(t *testing.T) {
	r, fb := newTestRenderer(t)
	b := testBundle(t)

	require.NoError(t, r.BeginShadowPass(256))
	r.BindState(b)
	r.DrawMesh(1, common.IdentityMatrix())
	r.EndShadowPass()
	require.NoError(t, r.BeginFrame([4]float32{}))
	r.BindState(b)
	r.DrawMesh(1, common.IdentityMatrix())
	r.DrawMesh(1, common.IdentityMatrix())
	r.EndFrame()

	assert.Equal(t, 2, fb.registered)
	require.Len(t, fb.draws, 3)
	assert.Equal(t, pipeline.PassShadow, fb.draws[0].pass)
	assert.Equal(t, pipeline.PassMain, fb.draws[1].pass)
}

func TestBindingsDoNotSurviveIntoNextPass(t *testing.T) {
	r, fb := newTestRenderer(t)
	require.NoError(t, r.BeginShadowPass(256))
	r.BindState(testBundle(t))
	r.EndShadowPass()

	require.NoError(t, r.BeginFrame([4]float32{}))
	r.DrawMesh(1, common.IdentityMatrix())
	r.EndFrame()
	assert.Empty(t, fb.draws)
}

func TestAbortFrameDiscardsStagedBlocks(t *testing.T) {
	r, fb := newTestRenderer(t)
	b := testBundle(t)

	require.NoError(t, r.BeginShadowPass(256))
	r.WriteFrameConstants([]byte{1})
	r.BindState(b)
	r.DrawMesh(1, common.IdentityMatrix())
	r.EndShadowPass()

	fb.frameErr = errors.New("surface lost")
	require.Error(t, r.BeginFrame([4]float32{}))
	r.AbortFrame()
	assert.Equal(t, 1, fb.aborted)
	assert.Equal(t, 0, fb.frame.Count())
	assert.Equal(t, 0, fb.model.Count())

	r.BindState(b)
	r.DrawMesh(1, common.IdentityMatrix())
	assert.Len(t, fb.draws, 1, "no pass is open after an abort")

	fb.frameErr = nil
	fb.draws = nil
	require.NoError(t, r.BeginFrame([4]float32{}))
	r.WriteFrameConstants([]byte{2})
	r.BindState(b)
	r.WriteObjectConstants([]byte{3})
	r.DrawMesh(1, common.IdentityMatrix())
	r.EndFrame()

	require.Len(t, fb.draws, 1)
	assert.Equal(t, DrawOffsets{}, fb.draws[0].offsets)
}

func TestPresentTogglesModeOnChange(t *testing.T) {
	r, fb := newTestRenderer(t)

	r.Present(true)
	assert.Len(t, fb.configured, 1)

	r.Present(false)
	assert.Equal(t, []PresentMode{PresentModeVSync, PresentModeUncapped}, fb.presentModes)
	assert.Len(t, fb.configured, 2)

	r.Present(false)
	assert.Len(t, fb.configured, 2)
	assert.Equal(t, 3, fb.presented)
}

func TestResizeIgnoresZeroSize(t *testing.T) {
	r, fb := newTestRenderer(t)
	r.Resize(0, 0)
	r.Resize(1024, 768)
	assert.Equal(t, [][2]int{{800, 600}, {1024, 768}}, fb.configured)

	r.Close()
	assert.True(t, fb.released)
}

func TestUploadRejectsEmptyData(t *testing.T) {
	r, _ := newTestRenderer(t)
	_, err := r.UploadMesh("empty", nil, nil, 0)
	assert.Error(t, err)
	_, err = r.UploadTexture(common.TextureStagingData{Label: "empty"})
	assert.Error(t, err)
}
