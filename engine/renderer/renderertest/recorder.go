// Package renderertest provides a recording renderer.Renderer for tests that run without a GPU.
package renderertest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/state"
)

// Op names a recorded renderer call.
type Op string

const (
	OpUploadMesh     Op = "UploadMesh"
	OpReleaseMesh    Op = "ReleaseMesh"
	OpUploadTexture  Op = "UploadTexture"
	OpReleaseTexture Op = "ReleaseTexture"
	OpBeginShadow    Op = "BeginShadowPass"
	OpEndShadow      Op = "EndShadowPass"
	OpBeginFrame     Op = "BeginFrame"
	OpSetViewport    Op = "SetViewport"
	OpWriteFrame     Op = "WriteFrameConstants"
	OpWriteObject    Op = "WriteObjectConstants"
	OpBindState      Op = "BindState"
	OpBindTexture    Op = "BindTexture"
	OpDrawMesh       Op = "DrawMesh"
	OpEndFrame       Op = "EndFrame"
	OpAbortFrame     Op = "AbortFrame"
	OpPresent        Op = "Present"
	OpResize         Op = "Resize"
	OpClose          Op = "Close"
)

// Call is one recorded renderer call. Only the fields relevant to Op are set.
type Call struct {
	Op       Op
	Label    string
	Bundle   *state.Bundle
	Slot     int
	Texture  common.TextureHandle
	Mesh     common.MeshHandle
	World    [16]float32
	Data     []byte
	Clear    [4]float32
	Viewport [4]float32
	Size     int
	VSync    bool
}

// Draw is the binding state observed by one DrawMesh call.
type Draw struct {
	Shadow   bool
	Bundle   *state.Bundle
	Textures [renderer.MaxTextureSlots]common.TextureHandle
	Frame    []byte
	Object   []byte
	Mesh     common.MeshHandle
	World    [16]float32
}

// Recorder is a renderer.Renderer that records every call in order.
// Upload and pass failures can be injected through the Fail fields.
type Recorder struct {
	mu sync.Mutex

	// Calls is every call in the order it was made.
	Calls []Call
	// Draws is the binding state seen by each DrawMesh issued inside a pass.
	Draws []Draw

	FailMeshUpload    error
	FailTextureUpload error
	FailShadowPass    error
	FailFrame         error

	width, height int
	nextMesh      common.MeshHandle
	nextTexture   common.TextureHandle
	closed        bool

	inPass   bool
	shadow   bool
	bundle   *state.Bundle
	textures [renderer.MaxTextureSlots]common.TextureHandle
	frame    []byte
	object   []byte
}

var _ renderer.Renderer = &Recorder{}

// New creates a Recorder with the given surface size.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - *Recorder: the recorder
func New(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

func (r *Recorder) record(c Call) {
	r.Calls = append(r.Calls, c)
}

func (r *Recorder) UploadMesh(label string, vertexData, indexData []byte, indexCount int) (common.MeshHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpUploadMesh, Label: label})
	if r.FailMeshUpload != nil {
		return 0, r.FailMeshUpload
	}
	if len(vertexData) == 0 || indexCount == 0 {
		return 0, fmt.Errorf("mesh %s: no geometry", label)
	}
	r.nextMesh++
	return r.nextMesh, nil
}

func (r *Recorder) ReleaseMesh(h common.MeshHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpReleaseMesh, Mesh: h})
}

func (r *Recorder) UploadTexture(data common.TextureStagingData) (common.TextureHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpUploadTexture, Label: data.Label})
	if r.FailTextureUpload != nil {
		return 0, r.FailTextureUpload
	}
	r.nextTexture++
	return r.nextTexture, nil
}

func (r *Recorder) ReleaseTexture(h common.TextureHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpReleaseTexture, Texture: h})
}

func (r *Recorder) BeginShadowPass(size int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBeginShadow, Size: size})
	if r.FailShadowPass != nil {
		return r.FailShadowPass
	}
	r.beginPass(true)
	return nil
}

func (r *Recorder) EndShadowPass() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpEndShadow})
	r.inPass = false
}

func (r *Recorder) BeginFrame(clear [4]float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBeginFrame, Clear: clear})
	if r.FailFrame != nil {
		return r.FailFrame
	}
	r.beginPass(false)
	return nil
}

func (r *Recorder) beginPass(shadow bool) {
	r.inPass = true
	r.shadow = shadow
	r.bundle = nil
	r.textures = [renderer.MaxTextureSlots]common.TextureHandle{}
}

func (r *Recorder) SetViewport(x, y, width, height float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpSetViewport, Viewport: [4]float32{x, y, width, height}})
}

func (r *Recorder) WriteFrameConstants(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]byte(nil), data...)
	r.record(Call{Op: OpWriteFrame, Data: cp})
	r.frame = cp
}

func (r *Recorder) WriteObjectConstants(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]byte(nil), data...)
	r.record(Call{Op: OpWriteObject, Data: cp})
	r.object = cp
}

func (r *Recorder) BindState(b *state.Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindState, Bundle: b})
	r.bundle = b
}

func (r *Recorder) BindTexture(slot int, h common.TextureHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpBindTexture, Slot: slot, Texture: h})
	if slot >= 0 && slot < renderer.MaxTextureSlots {
		r.textures[slot] = h
	}
}

func (r *Recorder) DrawMesh(mesh common.MeshHandle, world [16]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpDrawMesh, Mesh: mesh, World: world})
	if !r.inPass {
		return
	}
	r.Draws = append(r.Draws, Draw{
		Shadow:   r.shadow,
		Bundle:   r.bundle,
		Textures: r.textures,
		Frame:    r.frame,
		Object:   r.object,
		Mesh:     mesh,
		World:    world,
	})
}

func (r *Recorder) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpEndFrame})
	r.inPass = false
}

// AbortFrame closes any open pass and drops the staged frame and object blocks.
func (r *Recorder) AbortFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpAbortFrame})
	r.inPass = false
	r.bundle = nil
	r.frame = nil
	r.object = nil
}

func (r *Recorder) Present(vsync bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpPresent, VSync: vsync})
}

func (r *Recorder) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpResize, Viewport: [4]float32{0, 0, float32(width), float32(height)}})
	if width > 0 && height > 0 {
		r.width, r.height = width, height
	}
}

func (r *Recorder) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Call{Op: OpClose})
	r.closed = true
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Ops returns the recorded call names in order.
//
// Returns:
//   - []Op: the call names
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]Op, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many calls of op were recorded.
//
// Parameters:
//   - op: the call name
//
// Returns:
//   - int: the number of matching calls
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the recorded calls and draws. Handle counters and failures are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = nil
	r.Draws = nil
}
